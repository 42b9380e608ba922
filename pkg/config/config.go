// Package config loads the atom allow-list used by the compiler.
//
// The file is JSON by default:
//
//	{"AtomModules": ["nand2", "dff"]}
//
// A file with an .hcl extension is read as HCL instead:
//
//	AtomModules = ["nand2", "dff"]
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/OpenTraceLab/v2j/pkg/hdl"
	"github.com/OpenTraceLab/v2j/pkg/schema"
)

// DefaultPath is read when no config file is given on the command line.
const DefaultPath = "config.json"

// Config holds the compiler settings read from the config file.
type Config struct {
	// AtomModules names the primitive leaf modules. A module defined under
	// one of these names is flagged isAtom in the output.
	AtomModules []string `hcl:"AtomModules,optional" json:"AtomModules"`
}

// DefaultConfig returns a Config with an empty allow-list.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		file, diags = parser.ParseHCL(src, path)
	} else {
		v, err := schema.New()
		if err != nil {
			return nil, err
		}
		if err := v.ValidateConfig(src); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		file, diags = parser.ParseJSON(src, path)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, diags)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every atom name is a usable module name and is
// listed once.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.AtomModules))
	for _, name := range c.AtomModules {
		switch {
		case hdl.IsKeyword(name):
			return fmt.Errorf("atom module %q is a reserved word", name)
		case !hdl.IsIdentifier(name):
			return fmt.Errorf("atom module %q is not a valid identifier", name)
		case seen[name]:
			return fmt.Errorf("atom module %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}
