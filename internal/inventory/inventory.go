// Package inventory loads a YAML host-inventory overlay that supplements
// the SSH client configuration as a registry source.
package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of an inventory overlay:
//
//	hosts:
//	  web1.example.com: 10.0.1.10
//	  db1: db1.internal.example.com
//
// An alias with an empty address maps to itself, matching the registry's
// fallback behavior.
type File struct {
	Hosts map[string]string `yaml:"hosts"`
}

// Load reads and parses the overlay at path. A missing file is not an
// error; it returns an empty mapping so the registry is simply left as
// parsed from the SSH configuration.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file '%s': %w", path, err)
	}

	if file.Hosts == nil {
		return map[string]string{}, nil
	}
	return file.Hosts, nil
}
