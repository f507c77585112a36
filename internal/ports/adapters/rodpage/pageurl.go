package rodpage

import (
	"fmt"
	"net/url"
	"strings"
)

var allowedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"file":  {},
}

// NormalizeURL trims the input and defaults a bare host to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return raw
}

func ValidateURL(raw string) error {
	raw = NormalizeURL(raw)
	if raw == "" {
		return fmt.Errorf("page URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if _, ok := allowedSchemes[scheme]; !ok {
		return fmt.Errorf("invalid page URL %q: scheme %q is not supported", raw, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("invalid page URL %q: userinfo is not allowed", raw)
	}
	if scheme != "file" && u.Hostname() == "" {
		return fmt.Errorf("invalid page URL %q: host is required", raw)
	}
	if scheme == "file" && u.Path == "" {
		return fmt.Errorf("invalid page URL %q: path is required", raw)
	}
	return nil
}

// ValidateControlURL checks a DevTools endpoint such as ws://127.0.0.1:9222/devtools/browser/<id>.
func ValidateControlURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid control URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("invalid control URL %q: ws, wss, http or https is required", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid control URL %q: host is required", raw)
	}
	return nil
}
