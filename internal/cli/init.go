package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/configloader"
	"github.com/yaklabco/mdstream/internal/logging"
)

// defaultConfigFile is the file written by init when --output is not given.
const defaultConfigFile = ".mdstream.yml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mdstream configuration file",
		Long: `Create a new .mdstream.yml configuration file in the current directory.
Every setting is listed with its default value and a short explanation.

Examples:
  mdstream init                        Create .mdstream.yml
  mdstream init --force                Overwrite an existing file
  mdstream init --output custom.yml    Write to a custom file path`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigFile, "Output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := configloader.WriteTemplate(cmd.Context(), absPath, flags.force); err != nil {
		if errors.Is(err, configloader.ErrConfigExists) {
			return usageErrorf("file %q already exists; use --force to overwrite", flags.output)
		}
		return withExitCode(ExitIOError, err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'mdstream config show' to see the resolved configuration")

	return nil
}
