package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lexscribe/internal/app/errors"
)

func notificationFields(passphrase string) []Field {
	fields := []Field{
		{Key: "m_payment_id", Value: "sub-1"},
		{Key: "pf_payment_id", Value: "1089250"},
		{Key: "payment_status", Value: PaymentComplete},
		{Key: "item_name", Value: "Lexscribe Basic"},
		{Key: "amount_gross", Value: "199.00"},
		{Key: "amount_fee", Value: "-4.58"},
		{Key: "merchant_id", Value: "10000100"},
		{Key: "email_address", Value: "a+b@example.com"},
		{Key: "name_last", Value: ""},
		{Key: "custom_str1", Value: ""},
	}
	return append(fields, Field{Key: "signature", Value: SignNotification(fields, passphrase)})
}

func TestSignSkipsEmptyValuesAndSignature(t *testing.T) {
	base := []Field{{Key: "a", Value: "1"}, {Key: "b", Value: "two words"}}
	withNoise := []Field{{Key: "a", Value: "1"}, {Key: "empty", Value: ""}, {Key: "b", Value: "two words"}, {Key: "signature", Value: "x"}}

	assert.Equal(t, Sign(base, "pass"), Sign(withNoise, "pass"))
	assert.NotEqual(t, Sign(base, "pass"), Sign(base, ""))
	assert.Len(t, Sign(base, ""), 32)
}

func TestSignNotificationCoversEmptyValues(t *testing.T) {
	withEmpty := []Field{{Key: "a", Value: "1"}, {Key: "custom_str1", Value: ""}, {Key: "signature", Value: "x"}}
	withoutEmpty := []Field{{Key: "a", Value: "1"}}

	assert.NotEqual(t, SignNotification(withEmpty, "pass"), SignNotification(withoutEmpty, "pass"))
	assert.Equal(t, Sign(withEmpty, "pass"), SignNotification(withoutEmpty, "pass"))
}

func TestVerifyRequiresEmptyFieldsInSignature(t *testing.T) {
	v, err := NewVerifier("10000100", "secret", nil, true)
	require.NoError(t, err)

	fields := notificationFields("secret")
	fields = fields[:len(fields)-1]
	skipped := append(fields, Field{Key: "signature", Value: Sign(fields, "secret")})

	_, err = v.Verify("127.0.0.1", []byte(Encode(skipped)))
	assert.ErrorIs(t, err, apperrors.ErrNotificationInvalid)
}

func TestParseFormKeepsOrder(t *testing.T) {
	fields, err := ParseForm("b=2&a=hello+world&c=%2Fx")
	require.NoError(t, err)
	assert.Equal(t, []Field{{Key: "b", Value: "2"}, {Key: "a", Value: "hello world"}, {Key: "c", Value: "/x"}}, fields)

	_, err = ParseForm("a=%zz")
	assert.ErrorIs(t, err, apperrors.ErrNotificationInvalid)
}

func TestVerify(t *testing.T) {
	v, err := NewVerifier("10000100", "secret", []string{"197.97.145.144/28", "41.74.179.192/27"}, false)
	require.NoError(t, err)

	body := []byte(Encode(notificationFields("secret")))
	n, err := v.Verify("197.97.145.150", body)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", n.SubscriptionID)
	assert.Equal(t, "1089250", n.PaymentID)
	assert.Equal(t, PaymentComplete, n.Status)
	assert.Equal(t, 199.0, n.Amount)
}

func TestVerifyRejections(t *testing.T) {
	v, err := NewVerifier("10000100", "secret", []string{"197.97.145.144/28"}, false)
	require.NoError(t, err)

	tampered := notificationFields("secret")
	tampered[4].Value = "1.00"

	wrongMerchant := []Field{
		{Key: "m_payment_id", Value: "sub-1"},
		{Key: "pf_payment_id", Value: "1"},
		{Key: "payment_status", Value: PaymentComplete},
		{Key: "merchant_id", Value: "999"},
	}
	wrongMerchant = append(wrongMerchant, Field{Key: "signature", Value: SignNotification(wrongMerchant, "secret")})

	tests := []struct {
		name    string
		ip      string
		body    string
		wantErr error
	}{
		{name: "untrusted source", ip: "8.8.8.8", body: Encode(notificationFields("secret")), wantErr: apperrors.ErrNotificationSource},
		{name: "unparseable source", ip: "not-an-ip", body: Encode(notificationFields("secret")), wantErr: apperrors.ErrNotificationSource},
		{name: "wrong passphrase", ip: "197.97.145.145", body: Encode(notificationFields("other")), wantErr: apperrors.ErrNotificationInvalid},
		{name: "tampered amount", ip: "197.97.145.145", body: Encode(tampered), wantErr: apperrors.ErrNotificationInvalid},
		{name: "missing signature", ip: "197.97.145.145", body: "m_payment_id=sub-1", wantErr: apperrors.ErrNotificationInvalid},
		{name: "wrong merchant", ip: "197.97.145.145", body: Encode(wrongMerchant), wantErr: apperrors.ErrNotificationInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.ip, []byte(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifierSkipIPCheck(t *testing.T) {
	v, err := NewVerifier("", "secret", nil, true)
	require.NoError(t, err)
	assert.True(t, v.AllowedSource("8.8.8.8"))

	_, err = NewVerifier("", "", []string{"nope"}, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}
