package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"medichat/api/internal/script"
)

type options struct {
	lexiconPath string
	output      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "scriptcheck",
		Short: "Detect the script and language of chat messages",
		Long: `scriptcheck classifies text the same way the chat service does.

Examples:
  scriptcheck detect "mala taap aala aahe"
  scriptcheck instruct "मुझे बुखार है"
  scriptcheck lang "kasa aahe tu"
  cat messages.txt | scriptcheck detect -o json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.lexiconPath, "lexicon", "", "lexicon YAML file (default: built-in)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")

	root.AddCommand(newDetectCmd(opts), newInstructCmd(opts), newLangCmd(opts))
	return root
}

func (o *options) detector() (*script.Detector, error) {
	lex, err := script.LoadLexicon(o.lexiconPath)
	if err != nil {
		return nil, err
	}
	return script.New(lex, script.DefaultTunables()), nil
}

// render writes v as JSON or YAML, or calls text for the default format.
func (o *options) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch strings.ToLower(o.output) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

var (
	indicColor   = color.New(color.FgYellow, color.Bold)
	romanColor   = color.New(color.FgGreen, color.Bold)
	latinColor   = color.New(color.FgBlue, color.Bold)
	mixedColor   = color.New(color.FgMagenta, color.Bold)
	unknownColor = color.New(color.FgRed)
	otherColor   = color.New(color.FgCyan, color.Bold)
)

func colorize(l script.Label) string {
	switch l {
	case script.Devanagari, script.DevanagariHindi, script.DevanagariMarathi:
		return indicColor.Sprint(l)
	case script.RomanizedIndic, script.RomanizedHindi, script.RomanizedMarathi:
		return romanColor.Sprint(l)
	case script.Latin:
		return latinColor.Sprint(l)
	case script.Mixed:
		return mixedColor.Sprint(l)
	case script.Unknown:
		return unknownColor.Sprint(l)
	}
	return otherColor.Sprint(l)
}
