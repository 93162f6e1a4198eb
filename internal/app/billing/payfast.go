package billing

import (
	"crypto/md5"
	"encoding/hex"
	"net"
	"net/url"
	"strconv"
	"strings"

	apperrors "lexscribe/internal/app/errors"
)

// Payment statuses reported by the gateway
const (
	PaymentComplete  = "COMPLETE"
	PaymentFailed    = "FAILED"
	PaymentCancelled = "CANCELLED"
)

// Field is one ordered form field. The gateway signs fields in posting order.
type Field struct {
	Key   string `json:"name"`
	Value string `json:"value"`
}

// Sign returns the checkout signature: MD5 over the non-empty fields and passphrase
func Sign(fields []Field, passphrase string) string {
	return sign(fields, passphrase, false)
}

// SignNotification returns the notification signature, which covers every
// posted field before the signature, blank ones included
func SignNotification(fields []Field, passphrase string) string {
	return sign(fields, passphrase, true)
}

func sign(fields []Field, passphrase string, includeEmpty bool) string {
	var parts []string
	for _, f := range fields {
		if f.Key == "signature" || (f.Value == "" && !includeEmpty) {
			continue
		}
		parts = append(parts, f.Key+"="+url.QueryEscape(strings.TrimSpace(f.Value)))
	}
	if passphrase != "" {
		parts = append(parts, "passphrase="+url.QueryEscape(strings.TrimSpace(passphrase)))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(sum[:])
}

// Encode renders fields as a form body in their order
func Encode(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
	}
	return strings.Join(parts, "&")
}

// ParseForm decodes a form body keeping field order
func ParseForm(body string) ([]Field, error) {
	var fields []Field
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, apperrors.Mark(err, apperrors.ErrNotificationInvalid)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, apperrors.Mark(err, apperrors.ErrNotificationInvalid)
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields, nil
}

func lookup(fields []Field, key string) string {
	for _, f := range fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Notification is a verified payment notification
type Notification struct {
	SubscriptionID string
	PaymentID      string
	Status         string
	Amount         float64
	Token          string
}

// Verifier checks that payment notifications are signed and come from the gateway
type Verifier struct {
	merchantID  string
	passphrase  string
	allowed     []*net.IPNet
	skipIPCheck bool
}

// NewVerifier creates a verifier for the merchant account
func NewVerifier(merchantID, passphrase string, cidrs []string, skipIPCheck bool) (*Verifier, error) {
	v := &Verifier{merchantID: merchantID, passphrase: passphrase, skipIPCheck: skipIPCheck}
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(strings.TrimSpace(c))
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "invalid CIDR %q", c)
		}
		v.allowed = append(v.allowed, n)
	}
	return v, nil
}

// AllowedSource reports whether ip is inside the gateway's address ranges
func (v *Verifier) AllowedSource(ip string) bool {
	if v.skipIPCheck {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range v.allowed {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// Verify checks source address, signature and merchant of a raw notification body
func (v *Verifier) Verify(remoteIP string, body []byte) (*Notification, error) {
	if !v.AllowedSource(remoteIP) {
		return nil, apperrors.Wrapf(apperrors.ErrNotificationSource, "address %s", remoteIP)
	}

	fields, err := ParseForm(string(body))
	if err != nil {
		return nil, err
	}

	signature := lookup(fields, "signature")
	if signature == "" || !strings.EqualFold(signature, SignNotification(fields, v.passphrase)) {
		return nil, apperrors.Wrap(apperrors.ErrNotificationInvalid, "signature mismatch")
	}
	if v.merchantID != "" && lookup(fields, "merchant_id") != v.merchantID {
		return nil, apperrors.Wrap(apperrors.ErrNotificationInvalid, "merchant mismatch")
	}

	n := &Notification{
		SubscriptionID: lookup(fields, "m_payment_id"),
		PaymentID:      lookup(fields, "pf_payment_id"),
		Status:         lookup(fields, "payment_status"),
		Token:          lookup(fields, "token"),
	}
	if n.SubscriptionID == "" || n.PaymentID == "" || n.Status == "" {
		return nil, apperrors.Wrap(apperrors.ErrNotificationInvalid, "missing payment identifiers")
	}
	if gross := lookup(fields, "amount_gross"); gross != "" {
		amount, err := strconv.ParseFloat(gross, 64)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrNotificationInvalid, "amount_gross is not a number")
		}
		n.Amount = amount
	}
	return n, nil
}
