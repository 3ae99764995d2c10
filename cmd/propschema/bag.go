package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// readBag reads a property bag from a YAML or JSON file; "-" reads stdin.
// An empty document yields a nil bag.
func readBag(cmd *cobra.Command, path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bag: %w", err)
	}

	var bag map[string]any
	if err := yaml.Unmarshal(data, &bag); err != nil {
		return nil, fmt.Errorf("failed to parse bag %s: %w", path, err)
	}
	return bag, nil
}

// writeBag prints bag as YAML or JSON.
func writeBag(w io.Writer, bag map[string]any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bag)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bag); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
