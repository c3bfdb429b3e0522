package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// renderOutput writes v to stdout in the requested machine format. The
// text format is handled by each command itself.
func renderOutput(v interface{}, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case formatTOML:
		return toml.NewEncoder(os.Stdout).Encode(v)
	default:
		return fmt.Errorf("unknown format %q (expected text, json, yaml, or toml)", format)
	}
}
