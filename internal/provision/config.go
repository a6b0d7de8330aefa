package provision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the synthesized cocoindex.yaml document the sidecar reads at
// startup. It is the one template generated locally rather than fetched.
type Config struct {
	Project  string   `yaml:"project"`
	Port     int      `yaml:"port"`
	Patterns Patterns `yaml:"patterns"`
}

// Patterns holds the include/exclude glob lists for the indexer.
type Patterns struct {
	Included []string `yaml:"included"`
	Excluded []string `yaml:"excluded"`
}

// RenderConfig produces cocoindex.yaml content from the context. The
// include list is never empty: an empty set falls back to the defaults.
func RenderConfig(c Context) ([]byte, error) {
	included := c.Included
	if len(included) == 0 {
		included = DefaultIncludePatterns
	}
	excluded := c.Excluded
	if len(excluded) == 0 {
		excluded = DefaultExcludePatterns
	}
	cfg := Config{
		Project: c.ProjectID,
		Port:    c.Port,
		Patterns: Patterns{
			Included: included,
			Excluded: excluded,
		},
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return out, nil
}

// LoadConfig reads a materialized cocoindex.yaml, used by status reporting.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
