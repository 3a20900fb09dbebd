package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"product-filter-service/internal/contracts/schemas"
	"product-filter-service/internal/core/domain"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	schemaBaseURL = "https://schemas.product-filter.local/"

	FilterRequestSchema = "FilterRequest/1.0.0"
	PriceChangedEvent   = "CatalogPriceChangedEvent"
	PriceChangedVersion = "1.0.0"
)

var schemaRoots = []string{"events", "requests"}

// Registry holds every compiled contract keyed as "<Name>/<semver>".
type Registry struct {
	compiled map[string]*jsonschema.Schema
}

// LoadSchemas compiles all embedded schemas. Resources are added first so
// schemas may reference each other through $ref.
func LoadSchemas() (*Registry, error) {
	return loadFrom(schemas.SchemasFS)
}

func loadFrom(fsys fs.FS) (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	var paths []string
	for _, root := range schemaRoots {
		err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return err
			}
			if err := compiler.AddResource(schemaBaseURL+path, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("failed to add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking schema resources: %w", err)
		}
	}

	registry := &Registry{compiled: make(map[string]*jsonschema.Schema, len(paths))}
	for _, path := range paths {
		key := generateKeyFromPath(path)
		if key == "" {
			return nil, fmt.Errorf("schema path %s does not follow <kind>/<name>/v<N>.json", path)
		}
		schema, err := compiler.Compile(schemaBaseURL + path)
		if err != nil {
			return nil, fmt.Errorf("could not compile schema %s: %w", path, err)
		}
		registry.compiled[key] = schema
	}
	return registry, nil
}

// generateKeyFromPath turns "events/catalog-price-changed/v1.json" into
// "CatalogPriceChangedEvent/1.0.0" and "requests/filter-request/v1.json" into "FilterRequest/1.0.0".
func generateKeyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "v") {
		return ""
	}

	caser := cases.Title(language.English)

	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	if parts[0] == "events" {
		name.WriteString("Event")
	}

	version := strings.TrimPrefix(parts[2], "v") + ".0.0"
	return name.String() + "/" + version
}

// Keys lists the registered contract keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.compiled))
	for k := range r.compiled {
		keys = append(keys, k)
	}
	return keys
}

// ValidateEvent checks a queue message body against the schema of its type and version.
func (r *Registry) ValidateEvent(eventType, eventVersion string, body []byte) error {
	key := fmt.Sprintf("%s/%s", eventType, eventVersion)
	schema, ok := r.compiled[key]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, eventVersion)
	}

	v, err := decode(body)
	if err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// ValidateFilterInput checks the shape of a raw filter payload.
// Values the transport decoded into Go types are normalized through JSON first.
func (r *Registry) ValidateFilterInput(raw domain.RawFilterInput) error {
	schema, ok := r.compiled[FilterRequestSchema]
	if !ok {
		return fmt.Errorf("schema %s not registered", FilterRequestSchema)
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return &domain.ValidationError{Reason: "payload is not representable as JSON"}
	}
	v, err := decode(body)
	if err != nil {
		return &domain.ValidationError{Reason: "payload is not representable as JSON"}
	}

	if err := schema.Validate(v); err != nil {
		field := ""
		if vErr, ok := err.(*jsonschema.ValidationError); ok {
			field = fieldFromLocation(deepestCause(vErr).InstanceLocation)
		}
		return &domain.ValidationError{Field: field, Reason: "unexpected value shape"}
	}
	return nil
}

func decode(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func deepestCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// fieldFromLocation maps a JSON pointer like "/attributes/pa_color" to "attributes.pa_color".
func fieldFromLocation(location string) string {
	location = strings.Trim(location, "/")
	if location == "" {
		return ""
	}
	return strings.ReplaceAll(location, "/", ".")
}
