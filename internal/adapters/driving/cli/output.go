package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("invalid --output %q (use text, json or yaml)", format)
	}
}

// render writes v in the selected output format. text renders the
// human form and is only called for text output.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch outputFlag {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling output: %w", err)
		}
		return highlight(w, string(data)+"\n", "json")
	case outputYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		return highlight(w, string(data), "yaml")
	default:
		text(w)
		return nil
	}
}

// toYAML goes through JSON so that json tags and custom marshallers
// decide the field names.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling output: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("converting output: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("marshalling output: %w", err)
	}
	return out, nil
}

// highlight colours source on a terminal and writes it unchanged otherwise.
func highlight(w io.Writer, source, lexer string) error {
	if w != io.Writer(os.Stdout) || !stdoutIsTerminal() {
		_, err := io.WriteString(w, source)
		return err
	}
	if err := quick.Highlight(w, source, lexer, "terminal256", "monokai"); err != nil {
		_, err = io.WriteString(w, source)
		return err
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	failText = color.New(color.FgRed).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)
