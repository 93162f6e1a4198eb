package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// MaxSignedURLTTL is the longest expiry S3-compatible stores accept for a presigned URL
const MaxSignedURLTTL = 7 * 24 * time.Hour

// ValidateSignedURLTTL validates the validity window of presigned object URLs
func ValidateSignedURLTTL(ttl time.Duration, name string) error {
	if ttl < time.Minute {
		return fmt.Errorf("%s TTL must be at least 1 minute", name)
	}
	if ttl > MaxSignedURLTTL {
		return fmt.Errorf("%s TTL too large (max 7 days)", name)
	}
	return nil
}

// ValidateInterval validates a scheduler interval
func ValidateInterval(interval time.Duration, name string) error {
	if interval < time.Second {
		return fmt.Errorf("%s interval must be at least 1 second", name)
	}
	if interval > 24*time.Hour {
		return fmt.Errorf("%s interval too large (max 24 hours)", name)
	}
	return nil
}

// ValidateRetries validates retry count
func ValidateRetries(retries int, name string) error {
	if retries < 0 {
		return fmt.Errorf("%s retries cannot be negative", name)
	}
	if retries > 10 {
		return fmt.Errorf("%s retries too high (max 10)", name)
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}

	return nil
}

// ValidatePort validates port number
func ValidatePort(port string, name string) error {
	if port == "" {
		return fmt.Errorf("%s port is required", name)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s port invalid", name)
	}

	return nil
}

// ValidateCIDRs validates a list of CIDR blocks
func ValidateCIDRs(cidrs []string, name string) error {
	for _, c := range cidrs {
		if _, _, err := net.ParseCIDR(c); err != nil {
			return fmt.Errorf("%s contains invalid CIDR %q", name, c)
		}
	}
	return nil
}

// ValidateOneOf validates that value is one of the allowed values
func ValidateOneOf(value string, name string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s", name, strings.Join(allowed, ", "))
}
