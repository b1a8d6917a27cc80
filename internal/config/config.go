package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from codemap.yml.
type ProjectConfig struct {
	MaxFiles        int      `yaml:"maxFiles,omitempty"`
	IncludePatterns []string `yaml:"includePatterns,omitempty"`
	ExcludePatterns []string `yaml:"excludePatterns,omitempty"`
	ExcludeDirs     []string `yaml:"excludeDirs,omitempty"`
	Languages       []string `yaml:"languages,omitempty"`
	ContextLines    int      `yaml:"contextLines,omitempty"`
	Workers         int      `yaml:"workers,omitempty"`
	OutputPath      string   `yaml:"outputPath,omitempty"`
	Verbose         bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read codemap.yml or codemap.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codemap.yml", "codemap.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// IndexDefaults fills unset sweep options from the config.
func (c *ProjectConfig) IndexDefaults(maxFiles, workers int) (int, int) {
	if maxFiles == 0 {
		maxFiles = c.MaxFiles
	}
	if workers == 0 {
		workers = c.Workers
	}
	return maxFiles, workers
}
