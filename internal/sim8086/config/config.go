// Package config holds the sim8086 configuration file format.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/invopop/jsonschema"
)

// Config represents configuration for the sim8086 tool
type Config struct {
	Debug              bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	SignedDisplacement bool   `json:"signed_displacement,omitempty" jsonschema:"title=Signed Displacement,description=Render displacements as signed values"`
	NoColor            bool   `json:"no_color,omitempty" jsonschema:"title=No Color,description=Disable syntax highlighting"`
	OutDir             string `json:"out_dir,omitempty" jsonschema:"title=Output Directory,description=Directory for generated .asm listings"`
	Jobs               int    `json:"jobs,omitempty" jsonschema:"title=Jobs,description=Files decoded in parallel by the run command,minimum=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{Jobs: runtime.NumCPU()}
}

// Load reads a JSON config file over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Jobs < 0 {
		return cfg, fmt.Errorf("config %s: jobs must not be negative", path)
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.NumCPU()
	}
	return cfg, nil
}

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
