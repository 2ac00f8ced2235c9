package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"medichat/api/internal/script"
)

type detection struct {
	Text     string          `json:"text" yaml:"text"`
	Label    script.Label    `json:"label" yaml:"label"`
	Language script.Language `json:"language" yaml:"language"`
}

// inputs returns the joined args, or one entry per non-empty stdin line.
func inputs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	var out []string
	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func newDetectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [text...]",
		Short: "Print the script label of text (args or stdin lines)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.detector()
			if err != nil {
				return err
			}
			texts, err := inputs(cmd, args)
			if err != nil {
				return err
			}
			res := make([]detection, 0, len(texts))
			for _, t := range texts {
				l := d.DetectScript(t)
				res = append(res, detection{Text: t, Label: l, Language: l.Language()})
			}
			return opts.render(cmd.OutOrStdout(), res, func(w io.Writer) error {
				for _, r := range res {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", colorize(r.Label), r.Text); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newInstructCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "instruct <text...>",
		Short: "Print the directive that would be sent with text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.detector()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			label := d.DetectScript(text)
			out := struct {
				Label       script.Label `json:"label" yaml:"label"`
				Instruction string       `json:"instruction" yaml:"instruction"`
			}{label, script.CreateInstruction(label, text)}
			return opts.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := io.WriteString(w, out.Instruction)
				return err
			})
		},
	}
}

func newLangCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lang <text...>",
		Short: "Run Hindi/Marathi disambiguation alone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.detector()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			out := struct {
				Language      script.Language `json:"language" yaml:"language"`
				Transliterate bool            `json:"transliteration_pattern" yaml:"transliteration_pattern"`
			}{d.DetectIndicLanguage(text), d.HasTransliterationPattern(text)}
			return opts.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\n", out.Language)
				return err
			})
		},
	}
}
