package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	snapio "github.com/dzonerzy/go-pparse/io"
	"github.com/dzonerzy/go-pparse/lexer"
)

func newTokensCmd(opts *options) *cobra.Command {
	var (
		file   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "tokens [text...]",
		Short: "Print the token stream of a command line or file",
		Long: `Tokenize the arguments joined by spaces, or the file given with --file,
and print one line per token: location, byte span, kind and printed form.`,
		Example: `  pparse tokens -- commit -m "Initial commit" --amend
  pparse tokens --file script.txt --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			src, err := tokenSource(file, args)
			if err != nil {
				return err
			}
			opts.console.Debug("tokenizing %s (%d bytes)", src.Filename(), src.Len())

			toks, err := lexer.Tokenize(src)
			if err != nil {
				return err
			}
			views := tokenViews(src, toks)
			return render(opts.io.Out(), format, views, func(w io.Writer) error {
				return writeTokensText(w, opts.io, views)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the text from a file instead of the arguments")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text, json or yaml")
	return cmd
}

func tokenSource(file string, args []string) (*lexer.Source, error) {
	if file != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--file and text arguments are mutually exclusive")
		}
		return lexer.FromFile(file)
	}
	return lexer.FromString(strings.Join(args, " "), "<args>"), nil
}

func writeTokensText(w io.Writer, m *snapio.IOManager, views []tokenView) error {
	theme := snapio.DefaultTheme(m)
	muted := snapio.NewStyle().Fg(theme.Muted)
	kind := snapio.NewStyle().Fg(theme.Info)
	for _, v := range views {
		pos := fmt.Sprintf("%d:%d", v.Line, v.Column)
		span := fmt.Sprintf("[%d,%d)", v.Start, v.End)
		_, err := fmt.Fprintf(w, "%s %s %s %s\n",
			muted.Sprint(m, fmt.Sprintf("%-7s", pos)),
			muted.Sprint(m, fmt.Sprintf("%-9s", span)),
			kind.Sprint(m, fmt.Sprintf("%-16s", v.Kind)),
			v.Text)
		if err != nil {
			return err
		}
	}
	return nil
}
