package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/configloader"
)

func newConfigCommand(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
		Long: `Inspect how mdstream resolves its configuration.

Settings are merged from, in increasing precedence: built-in defaults,
/etc/mdstream/config.yaml, $XDG_CONFIG_HOME/mdstream/config.yaml, the
nearest .mdstream.yml above the working directory, the file named by
--config, MDSTREAM_* environment variables, and command-line flags.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, global)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration files that were loaded",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigPath(cmd, global)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List the supported environment variables",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigEnv(cmd, global)
		},
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, global *globalFlags) error {
	set, err := loadSettings(cmd, global, nil)
	if err != nil {
		return err
	}

	header := "# Resolved mdstream configuration (defaults only)"
	if len(set.loaded.LoadedFrom) > 0 {
		header = "# Resolved mdstream configuration\n# Loaded from: " + strings.Join(set.loaded.LoadedFrom, ", ")
	}

	content, err := set.cfg.ToYAMLWithHeader(header)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return writeText(cmd.OutOrStdout(), string(content))
}

func runConfigPath(cmd *cobra.Command, global *globalFlags) error {
	set, err := loadSettings(cmd, global, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := stylesFor(global, out)

	var builder strings.Builder
	paths := set.loaded.Paths
	for _, layer := range []struct {
		name string
		path string
	}{
		{"system", paths.System},
		{"user", paths.User},
		{"project", paths.Project},
		{"explicit", paths.Explicit},
	} {
		value := styles.Dim.Render("(none)")
		if layer.path != "" {
			value = styles.FilePath.Render(layer.path)
		}
		builder.WriteString(fmt.Sprintf("%-9s %s\n", layer.name+":", value))
	}
	return writeText(out, builder.String())
}

func runConfigEnv(cmd *cobra.Command, global *globalFlags) error {
	out := cmd.OutOrStdout()
	styles := stylesFor(global, out)

	vars := configloader.ListEnvVars()
	width := 0
	for _, v := range vars {
		width = max(width, len(v.Name))
	}

	var builder strings.Builder
	for _, v := range vars {
		marker := " "
		if _, ok := os.LookupEnv(v.Name); ok {
			marker = styles.Success.Render("*")
		}
		builder.WriteString(fmt.Sprintf("%s %s  %s\n",
			marker, styles.Bold.Render(fmt.Sprintf("%-*s", width, v.Name)), v.Description))
	}
	return writeText(out, builder.String())
}
