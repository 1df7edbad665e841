package logging

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

const redacted = "***"

// Redactor masks credentials in log output. It knows the literal secret
// values (instance credentials) and a few key names and patterns that always
// carry secrets.
type Redactor struct {
	secrets []string
	bearer  *regexp.Regexp
}

// sensitiveKeys are attribute names whose values are always masked.
var sensitiveKeys = []string{
	"api-key", "api_key", "apikey",
	"authorization", "proxy-authorization",
	"credential", "secret", "password", "token",
}

// NewRedactor creates a Redactor for the given secret values. Empty values
// are ignored.
func NewRedactor(secrets []string) *Redactor {
	r := &Redactor{
		bearer: regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	}
	for _, s := range secrets {
		if s != "" {
			r.secrets = append(r.secrets, s)
		}
	}
	// Longest first so a secret containing another is masked whole
	sort.Slice(r.secrets, func(i, j int) bool { return len(r.secrets[i]) > len(r.secrets[j]) })
	return r
}

// RedactString masks every known secret and bearer token inside value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, s := range r.secrets {
		if strings.Contains(value, s) {
			value = strings.ReplaceAll(value, s, redacted)
		}
	}
	return r.bearer.ReplaceAllString(value, "Bearer "+redacted)
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, redacted)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s != "" {
			if masked := r.RedactString(s); masked != s {
				return slog.String(a.Key, masked)
			}
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			msg := err.Error()
			if masked := r.RedactString(msg); masked != msg {
				return slog.String(a.Key, masked)
			}
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if lowerKey == sensitive {
			return true
		}
	}
	return false
}
