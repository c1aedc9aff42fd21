package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL trims and validates a URL string, returning a normalized value
// or an error if the URL is empty or not an absolute http(s) URL.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL: %q must include a scheme and host", s)
	}
	return s, nil
}
