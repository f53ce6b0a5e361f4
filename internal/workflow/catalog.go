package workflow

import (
	"fmt"
	"sort"
)

// Catalog holds the schema for every report family. It is built once and
// never mutated.
type Catalog struct {
	schemas map[ReportKind]*Schema
}

var defaultCatalog = NewCatalog(newStandardSchema(), newMicroMixSchema())

// NewCatalog indexes schemas by kind.
func NewCatalog(schemas ...*Schema) *Catalog {
	c := &Catalog{schemas: make(map[ReportKind]*Schema, len(schemas))}
	for _, s := range schemas {
		if _, dup := c.schemas[s.Kind()]; dup {
			panic(fmt.Sprintf("workflow: schema %s registered twice", s.Kind()))
		}
		c.schemas[s.Kind()] = s
	}
	return c
}

// DefaultCatalog returns the lab's built-in report families.
func DefaultCatalog() *Catalog { return defaultCatalog }

// Schema returns the schema for kind.
func (c *Catalog) Schema(kind ReportKind) (*Schema, error) {
	s, ok := c.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema registered for report kind %q", kind)
	}
	return s, nil
}

// Kinds lists registered kinds in lexical order.
func (c *Catalog) Kinds() []ReportKind {
	out := make([]ReportKind, 0, len(c.schemas))
	for k := range c.schemas {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
