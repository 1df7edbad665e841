package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of an instances document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from the file extension.
// Anything other than .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// InstancesDocument is the on-disk shape of the instances file.
//
//	{ "instances": [ { "endpoint": "https://a.example", "api_key": "..." } ],
//	  "header_name": "api-key" }
type InstancesDocument struct {
	Instances  []InstanceEntry `json:"instances" yaml:"instances"`
	HeaderName string          `json:"header_name,omitempty" yaml:"header_name,omitempty"`
}

// InstanceEntry is one element of the instances list as written on disk.
type InstanceEntry struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// Instance is one upstream backend. Endpoint never ends with a slash.
type Instance struct {
	Endpoint   string
	Credential string
}

// InstanceSet is the ordered, deduplicated, immutable list of instances
// together with the header name used to carry the credential.
type InstanceSet struct {
	instances  []Instance
	headerName string
}

// Len returns the number of instances (always >= 1 for a loaded set).
func (s *InstanceSet) Len() int {
	return len(s.instances)
}

// At returns the instance at index i.
func (s *InstanceSet) At(i int) Instance {
	return s.instances[i]
}

// HeaderName returns the credential header name as configured.
func (s *InstanceSet) HeaderName() string {
	return s.headerName
}

// Endpoints returns the endpoints in order. Credentials are not included,
// so the result is safe to log or expose.
func (s *InstanceSet) Endpoints() []string {
	out := make([]string, len(s.instances))
	for i, inst := range s.instances {
		out[i] = inst.Endpoint
	}
	return out
}

// Credentials returns every distinct credential. It exists for log redaction.
func (s *InstanceSet) Credentials() []string {
	seen := make(map[string]struct{}, len(s.instances))
	out := make([]string, 0, len(s.instances))
	for _, inst := range s.instances {
		if _, ok := seen[inst.Credential]; ok {
			continue
		}
		seen[inst.Credential] = struct{}{}
		out = append(out, inst.Credential)
	}
	return out
}

// CredentialResolver expands secret references in api_key values.
type CredentialResolver interface {
	ResolveReferences(ctx context.Context, value string) (string, error)
}

// LoadInstances reads and validates the instances document at path.
// Any failure is returned as a *ConfigError matching ErrInvalidConfig.
func LoadInstances(path string) (*InstanceSet, error) {
	return LoadInstancesWith(context.Background(), path, nil)
}

// LoadInstancesWith is LoadInstances with api_key values passed through
// resolver before validation. A nil resolver leaves them untouched.
func LoadInstancesWith(ctx context.Context, path string, resolver CredentialResolver) (*InstanceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to read instances document: %w", err)}
	}

	doc, err := DecodeInstances(data, FormatForPath(path))
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}

	if resolver != nil {
		if err := ResolveCredentials(ctx, &doc, resolver); err != nil {
			return nil, &ConfigError{Source: path, Err: err}
		}
	}

	set, err := NewInstanceSet(doc)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	return set, nil
}

// DecodeInstances decodes an instances document without validating it.
// Unknown keys are rejected in both formats.
func DecodeInstances(data []byte, format Format) (InstancesDocument, error) {
	var doc InstancesDocument

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("failed to parse instances document: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return doc, fmt.Errorf("failed to parse instances document: %w", err)
		}
	}

	return doc, nil
}

// ResolveCredentials replaces every api_key in doc with its resolved value.
// Failures are collected per entry into a ValidationError.
func ResolveCredentials(ctx context.Context, doc *InstancesDocument, resolver CredentialResolver) error {
	var errs []FieldError
	for i := range doc.Instances {
		value, err := resolver.ResolveReferences(ctx, doc.Instances[i].APIKey)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("instances[%d].api_key", i),
				Message: err.Error(),
			})
			continue
		}
		doc.Instances[i].APIKey = value
	}
	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// NewInstanceSet normalizes, deduplicates and validates a decoded document.
// Endpoints are trimmed of surrounding whitespace and trailing slashes.
// Entries identical in (endpoint, credential) after normalization are
// collapsed into the first occurrence.
func NewInstanceSet(doc InstancesDocument) (*InstanceSet, error) {
	var errs []FieldError

	if len(doc.Instances) == 0 {
		return nil, ValidationError{Errors: []FieldError{{
			Field:   "instances",
			Message: "at least one instance must be configured",
		}}}
	}

	type key struct{ endpoint, credential string }
	seen := make(map[key]struct{}, len(doc.Instances))
	instances := make([]Instance, 0, len(doc.Instances))

	for i, entry := range doc.Instances {
		prefix := fmt.Sprintf("instances[%d]", i)
		endpoint := normalizeEndpoint(entry.Endpoint)
		credential := strings.TrimSpace(entry.APIKey)

		valid := true
		if endpoint == "" {
			errs = append(errs, FieldError{Field: prefix + ".endpoint", Message: "endpoint is required"})
			valid = false
		} else if msg := checkEndpoint(endpoint); msg != "" {
			errs = append(errs, FieldError{Field: prefix + ".endpoint", Message: msg})
			valid = false
		}
		if credential == "" {
			errs = append(errs, FieldError{Field: prefix + ".api_key", Message: "api_key is required"})
			valid = false
		}
		if !valid {
			continue
		}

		k := key{endpoint, credential}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		instances = append(instances, Instance{Endpoint: endpoint, Credential: credential})
	}

	headerName := strings.TrimSpace(doc.HeaderName)
	if headerName == "" {
		headerName = DefaultHeaderName
	} else if !validHeaderName(headerName) {
		errs = append(errs, FieldError{
			Field:   "header_name",
			Message: fmt.Sprintf("invalid header name %q", headerName),
		})
	}

	if len(errs) > 0 {
		return nil, ValidationError{Errors: errs}
	}

	return &InstanceSet{instances: instances, headerName: headerName}, nil
}

func normalizeEndpoint(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func checkEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Sprintf("invalid URL format: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("endpoint must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "endpoint must include a host"
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "endpoint must not carry a query or fragment"
	}
	return ""
}

// validHeaderName reports whether s is an RFC 7230 token.
func validHeaderName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return s != ""
}
