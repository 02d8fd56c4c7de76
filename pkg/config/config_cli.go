// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadWithCLI loads config the same way Load does, then applies
// --config <path> and repeatable --set dotted.key=value overrides on
// top, in that order — CLI overrides win over both the file and the
// environment.
func LoadWithCLI(args []string) (*Config, error) {
	path, sets, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	for key, value := range sets {
		k.Set(key, parseCLIValue(value))
	}
	if len(sets) > 0 {
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// parseCLIOverrides extracts --config <path> and --set key=value pairs
// from a CLI argument list, hand-parsed with no cobra/urfave dependency.
func parseCLIOverrides(args []string) (string, map[string]string, error) {
	var path string
	sets := make(map[string]string)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--config requires a value")
			}
			i++
			path = args[i]
		case "--set":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--set requires a value")
			}
			i++
			key, value, ok := strings.Cut(args[i], "=")
			if !ok {
				return "", nil, fmt.Errorf("--set value %q must be key=value", args[i])
			}
			sets[key] = value
		}
	}
	return path, sets, nil
}

// parseCLIValue best-effort parses a CLI override value as a bool or
// number, falling back to the raw string.
func parseCLIValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
