package reporter

import (
	"bufio"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdstream/pkg/analysis"
)

// yamlIndent matches the indentation of configuration files.
const yamlIndent = 2

// YAMLRenderer writes the analysis report as YAML.
type YAMLRenderer struct {
	opts Options
}

// NewYAMLRenderer creates a new YAML renderer.
func NewYAMLRenderer(opts Options) *YAMLRenderer {
	return &YAMLRenderer{opts: opts}
}

// Render implements Renderer.
func (r *YAMLRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := yaml.NewEncoder(bw)
	encoder.SetIndent(yamlIndent)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return nil
}
