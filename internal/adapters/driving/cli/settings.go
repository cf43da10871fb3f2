package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the answer mode, LLM provider and startup documents.

Settings are stored in config.toml in the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [agent|pipeline]",
	Short: "Set the answer mode",
	Long: `Set how questions are answered.

Available modes:
  agent    - A decision-maker picks tools one at a time (requires an LLM for best results)
  pipeline - Fixed discovery, exploration and retrieval phases

Without an argument the mode is chosen interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsMode,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for tool decisions and answer synthesis.`,
	RunE:  runSettingsLLM,
}

var settingsDocCmd = &cobra.Command{
	Use:   "add-doc <id=path>",
	Short: "Add a document to the startup library",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsAddDoc,
}

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsDocCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	view := *settings
	view.LLM.APIKey = maskAPIKey(settings.LLM.APIKey)

	return render(cmd, view, func(w io.Writer) {
		fmt.Fprintln(w, "Current Settings")
		fmt.Fprintln(w, "================")
		fmt.Fprintln(w)

		fmt.Fprintln(w, "[Agent]")
		fmt.Fprintf(w, "  Mode: %s\n", settings.Agent.Mode.Description())
		fmt.Fprintf(w, "  Max rounds: %d\n", settings.Agent.MaxRounds)
		fmt.Fprintf(w, "  Decision timeout: %s\n", settings.Agent.DecisionTimeout)
		fmt.Fprintf(w, "  Answer timeout: %s\n", settings.Agent.AnswerTimeout)
		fmt.Fprintf(w, "  Load timeout: %s\n", settings.Agent.LoadTimeout)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "[LLM]")
		status := "configured"
		if !settings.LLM.IsConfigured() {
			status = "not configured (answers are evidence dumps)"
		} else {
			fmt.Fprintf(w, "  Provider: %s\n", settings.LLM.Provider.Description())
			fmt.Fprintf(w, "  Model: %s\n", settings.LLM.Model)
			if settings.LLM.BaseURL != "" {
				fmt.Fprintf(w, "  Base URL: %s\n", settings.LLM.BaseURL)
			}
			if settings.LLM.Provider.RequiresAPIKey() {
				fmt.Fprintf(w, "  API Key: %s\n", view.LLM.APIKey)
			}
			if settings.LLM.RatePerMinute > 0 {
				fmt.Fprintf(w, "  Rate limit: %d/min\n", settings.LLM.RatePerMinute)
			}
		}
		fmt.Fprintf(w, "  Status: %s\n", status)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "[Library]")
		if len(settings.Library.Documents) == 0 {
			fmt.Fprintln(w, "  (no startup documents)")
		}
		for _, d := range settings.Library.Documents {
			fmt.Fprintf(w, "  %s\n", d)
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "[Search]")
		fmt.Fprintf(w, "  Default limit: %d\n", settings.Search.DefaultLimit)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "[History]")
		fmt.Fprintf(w, "  Enabled: %t\n", settings.History.Enabled)
	})
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	modes := []domain.AnswerMode{domain.AnswerModeAgent, domain.AnswerModePipeline}
	var selected domain.AnswerMode
	if len(args) == 1 {
		selected = domain.AnswerMode(args[0])
	} else {
		reader := bufio.NewReader(stdin)
		cmd.Println("Select Answer Mode")
		cmd.Println("------------------")
		for i, mode := range modes {
			cmd.Printf("  %d. %s\n", i+1, mode.Description())
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(reader), len(modes), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		selected = modes[idx-1]
	}

	if err := settingsService.SetAnswerMode(selected); err != nil {
		return fmt.Errorf("failed to set answer mode: %w", err)
	}
	cmd.Printf("Answer mode set to: %s\n", selected.Description())
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	return configureLLMProvider(cmd, bufio.NewReader(stdin))
}

func runSettingsAddDoc(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	if err := settingsService.AddDocument(args[0]); err != nil {
		return err
	}
	cmd.Printf("Added %s to the startup library.\n", args[0])
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Print("Enter base URL (blank for default): ")
	baseURL := readLine(reader)

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey, baseURL); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("%s: %v\n", failText("FAILED"), err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println(okText("OK"))

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to the
// line reader otherwise.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
