package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	askMode      string
	askShowTrace bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the loaded tables",
	Long: `Answers a natural-language question about the loaded documents.

In agent mode (default) a decision-maker picks one tool at a time until
it has enough evidence. In pipeline mode a fixed discovery, exploration,
retrieval sequence runs instead. Without a configured LLM the answer is
the gathered evidence itself.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "answer mode (agent, pipeline); default from settings")
	askCmd.Flags().BoolVar(&askShowTrace, "trace", false, "print the tool calls that were made")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerFactory == nil {
		return notConfigured("answer")
	}

	mode := domain.AnswerMode(askMode)
	if mode != "" && !mode.IsValid() {
		return &domain.BadParameterError{
			Param: "mode",
			Value: askMode,
			Valid: []string{string(domain.AnswerModeAgent), string(domain.AnswerModePipeline)},
		}
	}

	answers, err := answerFactory(cmd.Context(), mode)
	if err != nil {
		return err
	}

	resp, err := answers.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	return render(cmd, resp, func(w io.Writer) {
		printResponse(w, resp, askShowTrace)
	})
}

func printResponse(w io.Writer, resp *domain.Response, trace bool) {
	fmt.Fprintln(w, resp.Answer)
	fmt.Fprintln(w)

	if len(resp.Sources) > 0 {
		printSources(w, resp.Sources)
	}
	if trace {
		fmt.Fprintln(w, "Tool calls:")
		for _, c := range resp.Metadata.ToolCalls {
			status := okText(string(c.Kind))
			if c.Error != "" {
				status = failText(c.Error)
			}
			fmt.Fprintf(w, "  %d. %s %s\n", c.Step, domain.ToolCall{Name: c.Tool, Parameters: c.Parameters}, status)
		}
	}

	meta := resp.Metadata
	line := fmt.Sprintf("%s mode, %d steps, stop: %s, confidence %.2f, %s",
		meta.Mode, meta.Steps, meta.StopReason, resp.Confidence, meta.Duration.Round(time.Millisecond))
	fmt.Fprintln(w, dimText(line))
	if meta.Degraded {
		fmt.Fprintln(w, failText("answer degraded: the language model was unavailable or failed"))
	}
}
