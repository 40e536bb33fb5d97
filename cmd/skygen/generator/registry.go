package generator

import (
	"fmt"
	"slices"
)

// Registry maps generator names to factories. Names match the executor that
// consumes the generated lines.
var Registry = map[string]func(keys int) Generator{
	"wordcount": func(keys int) Generator { return &WordsGenerator{Vocabulary: keys} },
	"maxvalue":  func(keys int) Generator { return &MetricGenerator{KeyCount: keys} },
	"average":   func(keys int) Generator { return &MetricGenerator{KeyCount: keys} },
	"skycell":   func(keys int) Generator { return &CatalogGenerator{Clusters: keys} },
}

// Get returns a generator by name. keys sizes the key space (vocabulary,
// metric names or source clusters); 0 picks the generator's default.
func Get(name string, keys int) (Generator, error) {
	factory, exists := Registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return factory(keys), nil
}

// List returns all available generator names, sorted
func List() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
