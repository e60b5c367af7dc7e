package cli

import (
	"io"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
)

// helpTemplate renders help and usage for every command. The "-" argument
// note is shown for commands that read Markdown input.
const helpTemplate = `{{with (or .Long .Short)}}{{ trimTrailing . }}

{{end}}{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}
{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}{{end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}{{end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}{{end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}{{end}}
{{- if readsInput .}}

Pass "-" to read Markdown from standard input.{{end}}
{{- if not .HasParent}}

Environment variables are listed by "{{ command "mdstream config env" }}".{{end}}
{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.{{end}}
`

// inputCommands are the commands that accept "-" for standard input.
var inputCommands = map[string]bool{"parse": true, "ranges": true, "diff": true, "replay": true}

// helpFormatter renders styled help with the palette used for command output.
type helpFormatter struct {
	styles *pretty.Styles
}

// installHelp sets styled help and usage functions on root and, through
// inheritance, on every subcommand. Color is resolved when help is printed
// so that --color applies.
func installHelp(root *cobra.Command, flags *globalFlags) {
	render := func(cmd *cobra.Command, w io.Writer) error {
		h := helpFormatter{styles: pretty.NewStyles(pretty.IsColorEnabled(flags.color, w))}
		tmpl, err := template.New("help").Funcs(h.funcs()).Parse(helpTemplate)
		if err != nil {
			return err
		}
		return tmpl.Execute(w, cmd)
	}

	root.SetUsageFunc(func(cmd *cobra.Command) error {
		return render(cmd, cmd.OutOrStderr())
	})
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if err := render(cmd, cmd.OutOrStdout()); err != nil {
			cmd.PrintErrln(err)
		}
	})
}

func (h helpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"heading":    h.styles.SummaryTitle.Render,
		"command":    h.styles.FilePath.Render,
		"subcommand": h.styles.Incremental.Render,
		"dim":        h.styles.Dim.Render,
		"flags":      h.flagUsages,
		"rpad":       rpad,
		"trimTrailing": func(s string) string {
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				lines[i] = strings.TrimRight(line, " \t")
			}
			return strings.Join(lines, "\n")
		},
		"readsInput": func(cmd *cobra.Command) bool {
			return inputCommands[cmd.Name()]
		},
	}
}

// flagUsages styles pflag's usage block: flag names highlighted, value
// types dimmed, descriptions and padding untouched.
func (h helpFormatter) flagUsages(set interface{ FlagUsages() string }) string {
	lines := strings.Split(strings.TrimSuffix(set.FlagUsages(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = h.flagLine(line)
	}
	return strings.Join(lines, "\n")
}

func (h helpFormatter) flagLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]

	// pflag separates the flag column from its description with at least
	// two spaces.
	names, desc, ok := strings.Cut(trimmed, "  ")
	if !ok {
		return line
	}

	tokens := strings.Fields(names)
	for i, token := range tokens {
		name, comma := strings.CutSuffix(token, ",")
		if !strings.HasPrefix(name, "-") {
			tokens[i] = h.styles.Dim.Render(token)
			continue
		}
		tokens[i] = h.styles.Info.Render(name)
		if comma {
			tokens[i] += ","
		}
	}
	return indent + strings.Join(tokens, " ") + "  " + desc
}

func rpad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
