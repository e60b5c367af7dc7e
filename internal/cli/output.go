package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/config"
)

// yamlIndent matches the indentation of configuration files.
const yamlIndent = 2

// parseOutputFormat validates a --format value of the inspection commands.
func parseOutputFormat(format string) (config.OutputFormat, error) {
	switch f := config.OutputFormat(format); f {
	case config.FormatText, config.FormatJSON, config.FormatYAML:
		return f, nil
	case "":
		return config.FormatText, nil
	default:
		return "", usageErrorf("invalid format %q; must be one of: text, json, yaml", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format config.OutputFormat, v any) error {
	switch format {
	case config.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case config.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(yamlIndent)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
	return nil
}

// stylesFor returns the output styles for w according to --color.
func stylesFor(flags *globalFlags, w io.Writer) *pretty.Styles {
	return pretty.NewStyles(pretty.IsColorEnabled(flags.color, w))
}
