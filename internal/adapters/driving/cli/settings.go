package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/recall/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage workspace settings",
	Long: `View and configure retrieval settings and AI providers.

Settings are stored in .recall/config.toml inside the workspace.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Sets one setting by its key, for example:

  recall settings set retrieval.max_results 8
  recall settings set retrieval.context_format natural

Invalid values are rejected and the previous value is kept.
Run 'recall settings keys' for the list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider for semantic search.

Changing provider makes existing embeddings incomparable with new queries.
Run 'recall reembed' afterwards to restore semantic search.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that answers questions from retrieved context.`,
	RunE:  runSettingsLLM,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers can be built",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

// providerChecker is implemented by settings services that can validate
// provider connectivity.
type providerChecker interface {
	CheckProviders() error
}

// settingsInput is where interactive answers are read from.
var settingsInput io.Reader = os.Stdin

func init() {
	for _, c := range []*cobra.Command{
		settingsCmd, settingsShowCmd, settingsSetCmd, settingsKeysCmd,
		settingsEmbeddingCmd, settingsLLMCmd, settingsCheckCmd,
	} {
		c.Annotations = map[string]string{annotationServices: servicesSettings}
	}

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Max results:        %d\n", r.MaxResults)
	cmd.Printf("  Search threshold:   %.2f\n", r.SearchThreshold)
	cmd.Printf("  Weights:            semantic %.2f, keyword %.2f\n", r.SemanticWeight, r.KeywordWeight)
	cmd.Printf("  Max context length: %d\n", r.MaxContextLength)
	cmd.Printf("  Context format:     %s\n", r.ContextFormat)
	cmd.Printf("  Allow empty:        %t\n", r.AllowEmptyContext)
	cmd.Printf("  Minimum results:    %d\n", r.RequireMinimumResults)
	cmd.Printf("  Search timeout:     %s\n", r.SearchTimeout)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size:    %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (none, answers are the retrieved context)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.Provider.IsLocal() {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", displayAPIKey(settings.LLM.APIKey))
		}
		cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'recall settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(settingsInput)
	providers := []domain.AIProvider{domain.AIProviderStub, domain.AIProviderOllama, domain.AIProviderOpenAI}
	return configureProvider(cmd, reader, "Embedding", providers, settingsService.SetEmbeddingProvider)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(settingsInput)
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic}
	return configureProvider(cmd, reader, "LLM", providers, settingsService.SetLLMProvider)
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}
	cmd.Print("Checking providers... ")
	if checker, ok := settingsService.(providerChecker); ok {
		if err := checker.CheckProviders(); err != nil {
			cmd.Println("FAILED")
			return err
		}
	}
	cmd.Println("OK")
	return nil
}

// configureProvider asks for a provider, a model and, when needed, an API key.
// An empty model keeps the provider default.
func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	kind string,
	providers []domain.AIProvider,
	set func(domain.AIProvider, string, string) error,
) error {
	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	var model string
	if selected != domain.AIProviderStub {
		cmd.Print("Enter model name (empty for default): ")
		model = readLine(reader)
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Printf("Enter API key (empty to use %s_API_KEY): ", strings.ToUpper(string(selected)))
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(kind), err)
	}

	cmd.Printf("%s provider configured: %s\n", kind, selected.Description())
	return nil
}

// Helper functions.

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

// readPassword reads without echo from a terminal, otherwise from reader.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func displayAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
