package feed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSources []byte

// Source is one syndication feed within a category.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Registry maps a category name to its ordered list of feed sources.
type Registry map[string][]Source

type registryFile struct {
	Categories map[string][]Source `yaml:"categories"`
}

// LoadRegistry reads the source registry from the given YAML file, or the
// embedded defaults when path is empty.
func LoadRegistry(path string) (Registry, error) {
	data := defaultSources
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading sources config: %w", err)
		}
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing sources config: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("sources config defines no categories")
	}
	for category, sources := range file.Categories {
		if len(sources) == 0 {
			return nil, fmt.Errorf("category %q has no sources", category)
		}
		for _, s := range sources {
			if s.Name == "" || s.URL == "" {
				return nil, fmt.Errorf("category %q: every source needs a name and url", category)
			}
		}
	}

	return Registry(file.Categories), nil
}

// Categories returns the category names in stable order.
func (r Registry) Categories() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
