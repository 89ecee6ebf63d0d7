package atlas

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the default catalog document name.
const CatalogFile = "characters.yaml"

// Catalog is the set of known characters, in declaration order.
type Catalog struct {
	order  []string
	byType map[string]*Descriptor
}

type catalogSpec struct {
	Characters []*Descriptor `yaml:"characters"`
}

// NewCatalog builds a catalog from descriptors, validating each one.
func NewCatalog(descs ...*Descriptor) (*Catalog, error) {
	c := &Catalog{byType: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		if d == nil {
			continue
		}
		if d.Type == "" {
			return nil, fmt.Errorf("%w: character without type", ErrInvalidDescriptor)
		}
		if _, dup := c.byType[d.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate character %q", ErrInvalidDescriptor, d.Type)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		c.order = append(c.order, d.Type)
		c.byType[d.Type] = d
	}
	return c, nil
}

// ParseCatalog decodes a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var spec catalogSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("atlas: unmarshal catalog: %w", err)
	}
	return NewCatalog(spec.Characters...)
}

// LoadCatalog reads name from dir when present on disk, otherwise from the
// embedded copy.
func LoadCatalog(dir, name string) (*Catalog, error) {
	if name == "" {
		name = CatalogFile
	}
	data, err := Load(dir, name)
	if err != nil {
		return nil, fmt.Errorf("atlas: load %s: %w", name, err)
	}
	return ParseCatalog(data)
}

// Lookup returns the descriptor for a character type.
func (c *Catalog) Lookup(characterType string) (*Descriptor, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, characterType)
	}
	d, ok := c.byType[characterType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, characterType)
	}
	return d, nil
}

// Types returns character types in declaration order.
func (c *Catalog) Types() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}
