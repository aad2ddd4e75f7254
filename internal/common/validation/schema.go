// Package validation checks response payloads from the recommendation service
// against the JSON schemas embedded under schemas/.
package validation

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per response shape.
const (
	SchemaLandRecommend    = "land_recommend"
	SchemaCropRecommend    = "crop_recommend"
	SchemaCropHistory      = "crop_history"
	SchemaCropStats        = "crop_stats"
	SchemaCropsAvailable   = "crops_available"
	SchemaCropRequirements = "crop_requirements"
	SchemaLogin            = "login"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins all errors into one line for logs and error details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("schema violation: %s", r.Summary())
}

// Registry holds compiled schemas. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry compiled from the embedded schemas.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = LoadEmbedded()
	})
	return defaultRegistry, defaultErr
}

// LoadEmbedded compiles every schemas/*.json file.
func LoadEmbedded() (*Registry, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}

	r := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if err := r.Register(name, raw); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register compiles a schema document and stores it under name.
func (r *Registry) Register(name string, raw []byte) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", name, err)
	}
	r.mu.Lock()
	r.schemas[name] = schema
	r.mu.Unlock()
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidateBytes checks a raw JSON document. A body that is not JSON at all is
// reported as a single error on the root.
func (r *Registry) ValidateBytes(name string, body []byte) (*ValidationResult, error) {
	return r.validate(name, gojsonschema.NewBytesLoader(body))
}

// ValidateValue checks an already decoded Go value.
func (r *Registry) ValidateValue(name string, v interface{}) (*ValidationResult, error) {
	return r.validate(name, gojsonschema.NewGoLoader(v))
}

func (r *Registry) validate(name string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}, nil
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	errs := make([]ValidationError, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		}
	}
	return &ValidationResult{Valid: false, Errors: errs}, nil
}
