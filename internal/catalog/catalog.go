// Package catalog provides the read-only schema catalog: which entity types
// exist, which properties they carry, and how types relate to each other.
// The engine only ever reads a loaded catalog; refresh happens by swapping
// whole snapshots through Store.
package catalog

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yml
var assets embed.FS

// Property describes one declared property of a schema.
type Property struct {
	Type string `yaml:"type"`
}

// Schema is one entity type definition, with its inheritance chain resolved.
type Schema struct {
	Name       string
	Extends    []string            `yaml:"extends"`
	Matchable  bool                `yaml:"matchable"`
	Properties map[string]Property `yaml:"properties"`

	// ancestors includes the schema itself.
	ancestors   map[string]struct{}
	descendants map[string]struct{}
}

// Catalog is an immutable snapshot of all schema definitions.
type Catalog struct {
	Version string
	schemas map[string]*Schema
}

type rawCatalog struct {
	Version string             `yaml:"version"`
	Schemas map[string]*Schema `yaml:"schemas"`
}

// Load parses the embedded schema definitions and resolves inheritance.
func Load() (*Catalog, error) {
	data, err := assets.ReadFile("schemas.yml")
	if err != nil {
		return nil, fmt.Errorf("read schema definitions: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML schema definitions.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse schema definitions: %w", err)
	}

	c := &Catalog{Version: raw.Version, schemas: raw.Schemas}

	for name, schema := range c.schemas {
		schema.Name = name
		if schema.Properties == nil {
			schema.Properties = map[string]Property{}
		}
		for _, parent := range schema.Extends {
			if _, ok := c.schemas[parent]; !ok {
				return nil, fmt.Errorf("schema %s extends unknown schema %s", name, parent)
			}
		}
	}

	for name, schema := range c.schemas {
		schema.ancestors = map[string]struct{}{}
		if err := c.collectAncestors(name, schema.ancestors, 0); err != nil {
			return nil, err
		}
	}

	for name, schema := range c.schemas {
		schema.descendants = map[string]struct{}{}
		for other, otherSchema := range c.schemas {
			if other == name {
				continue
			}
			if _, ok := otherSchema.ancestors[name]; ok {
				schema.descendants[other] = struct{}{}
			}
		}
	}

	return c, nil
}

func (c *Catalog) collectAncestors(name string, into map[string]struct{}, depth int) error {
	if depth > len(c.schemas) {
		return fmt.Errorf("schema inheritance cycle involving %s", name)
	}
	if _, ok := into[name]; ok {
		return nil
	}
	into[name] = struct{}{}

	for _, parent := range c.schemas[name].Extends {
		if err := c.collectAncestors(parent, into, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Schema returns a schema definition, or nil when unknown.
func (c *Catalog) Schema(name string) *Schema {
	return c.schemas[name]
}

// Names returns all schema names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsA reports whether schema is target or a descendant of target.
func (c *Catalog) IsA(schema, target string) bool {
	if schema == target {
		return true
	}
	s := c.schemas[schema]
	if s == nil {
		return false
	}
	_, ok := s.ancestors[target]
	return ok
}

// Comparable reports whether a candidate schema may be scored against a
// query schema: either side is the other or one of its descendants.
func (c *Catalog) Comparable(query, candidate string) bool {
	return c.IsA(candidate, query) || c.IsA(query, candidate)
}

// PropsOfType returns the property names of the given value type across the
// schema's whole inheritance chain, sorted for determinism.
func (c *Catalog) PropsOfType(schema, valueType string) []string {
	s := c.schemas[schema]
	if s == nil {
		return nil
	}

	var names []string
	for ancestor := range s.ancestors {
		for prop, def := range c.schemas[ancestor].Properties {
			if def.Type == valueType {
				names = append(names, prop)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Validate fails when a declared property type has no comparator. Called
// once at startup so misconfiguration is fatal at boot, not per request.
func (c *Catalog) Validate(supportedTypes map[string]struct{}) error {
	for name, schema := range c.schemas {
		for prop, def := range schema.Properties {
			if _, ok := supportedTypes[def.Type]; !ok {
				return fmt.Errorf("schema %s property %s has unsupported type %q", name, prop, def.Type)
			}
		}
	}
	return nil
}
