package cli

import (
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/config"
)

// versionView is the structured form of the version command.
type versionView struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit" yaml:"commit"`
	Built    string `json:"built" yaml:"built"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	var (
		short  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date and Go toolchain of mdstream.`,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				return writeText(out, info.Version+"\n")
			}

			outputFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			view := versionView{
				Version:  info.Version,
				Commit:   info.Commit,
				Built:    info.Date,
				Go:       runtime.Version(),
				Platform: runtime.GOOS + "/" + runtime.GOARCH,
			}
			if outputFormat != config.FormatText {
				return writeStructured(out, outputFormat, view)
			}

			logger := log.NewWithOptions(out, log.Options{})
			logger.SetLevel(log.InfoLevel)
			logger.Info("mdstream",
				logging.FieldVersion, view.Version,
				logging.FieldCommit, view.Commit,
				logging.FieldBuilt, view.Built,
				"go", view.Go,
				"platform", view.Platform,
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")

	return cmd
}
