// jlokit — Japanese game-text localization toolkit with AI translation support.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/minios-linux/jlokit/config"
	"github.com/minios-linux/jlokit/extract"
	"github.com/minios-linux/jlokit/i18n"
	"github.com/minios-linux/jlokit/locale"
	"github.com/minios-linux/jlokit/merge"
	"github.com/minios-linux/jlokit/progress"
	"github.com/minios-linux/jlokit/settings"
	"github.com/minios-linux/jlokit/translate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	localeFlag string
)

// localeValue validates and canonicalizes the --locale flag as it is
// parsed, so every subcommand sees a supported, normalized code.
type localeValue struct {
	dst *string
}

var _ pflag.Value = localeValue{}

func (v localeValue) String() string {
	if v.dst == nil {
		return ""
	}
	return *v.dst
}

func (v localeValue) Set(s string) error {
	normalized, err := locale.Normalize(s)
	if err != nil {
		return err
	}
	*v.dst = normalized
	return nil
}

func (v localeValue) Type() string {
	return "locale"
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jlokit",
		Short: "Japanese game-text localization toolkit with AI translation",
		Long: `jlokit — Japanese game-text localization toolkit with AI translation.

Extracts untranslated Japanese strings from game data dumps (nested JSON),
tracks their translation state per locale in JSON record stores, translates
batches through AI providers, and merges the results back while keeping a
progress badge in the status README.

Commands:
  extract-todo  Scan a JSON dump and update the raw list and tracking store
  translate     Translate pending strings using an AI provider
  generate      Merge raw/translation arrays into the store, refresh the badge
  status        Show translation coverage per locale (read-only)
  init          Write a default .jlokit.yaml project configuration
  auth          Manage provider API keys

AI Providers:
  claude    Anthropic Claude — API key (ANTHROPIC_API_KEY)
  deepseek  DeepSeek — API key (DEEPSEEK_API_KEY)
  qwen      Qwen via DashScope compatible mode — API key (DASHSCOPE_API_KEY)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().VarP(localeValue{&localeFlag}, "locale", "l", "Target locale (default from .jlokit.yaml, else "+locale.Default+")")

	_ = root.RegisterFlagCompletionFunc("locale", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(locale.Supported()))
		for _, code := range locale.Supported() {
			completions = append(completions, fmt.Sprintf("%s\t%s", code, locale.Resolve(code).Name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newExtractTodoCmd(),
		newTranslateCmd(),
		newGenerateCmd(),
		newStatusCmd(),
		newInitCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jlokit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// extract-todo (JSON dump -> raw list + tracking store)
// ---------------------------------------------------------------------------

func newExtractTodoCmd() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:     "extract-todo",
		Aliases: []string{"gentodo"},
		Short:   "Extract Japanese strings from a game data dump",
		Long: `Extract Japanese strings from a game data dump.

Scans the JSON dump for string values containing Japanese script
(Hiragana, Katakana, CJK ideographs, halfwidth/fullwidth forms), writes
the de-duplicated list to {raw_dir}/{stem}_raw.json and appends any
genuinely new strings to the tracking store {data_dir}/{stem}.json.
Existing tracking records are never rewritten or removed.

Examples:
  jlokit extract-todo -i dumps/scenario.json
  jlokit extract-todo -i dumps/items.json --root ~/game-l10n`,
		Run: func(cmd *cobra.Command, args []string) {
			runExtractTodo(inputFile)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input-file", "i", "", "JSON dump to scan (required)")
	_ = cmd.MarkFlagRequired("input-file")

	return cmd
}

func runExtractTodo(inputFile string) {
	proj := detectProject()

	res, err := extract.Run(extract.Options{
		InputFile: inputFile,
		RawDir:    proj.RawDir,
		DataDir:   proj.DataDir,
		OnLog: func(format string, args ...any) {
			logInfo(format, args...)
		},
	})
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	logSuccess(i18n.T("Extraction complete")+": %d unique / %d total strings", res.Unique, res.Total)
}

// ---------------------------------------------------------------------------
// translate (file or directory -> AI provider -> parallel translation list)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		// Target selection
		inputPath string
		limit     int

		// Provider selection
		provider string
		apiKey   string
		model    string
		baseURL  string

		// Parallelization
		workers int

		// Network
		timeout time.Duration
		proxy   string
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate pending strings using an AI provider",
		Long: `Translate pending strings using an AI provider.

Takes a JSON file (a raw list or a record store) or a directory of such
files. Each file's untranslated strings are sent in a single batched API
call; the reply is written next to the input as {stem}_{locale}.json, a
list parallel to the input array that pairs directly with
'jlokit generate'. In directory mode a failed file does not stop the
remaining files.

Examples:
  # Translate one raw list into Simplified Chinese using Claude
  jlokit translate -f raw/scenario_raw.json --provider claude

  # Translate every tracking store in data/ with DeepSeek, 4 at a time
  jlokit translate -f data --provider deepseek --workers 4

  # Send only the first 50 pending strings
  jlokit translate -f raw/items_raw.json --provider qwen --limit 50`,
		Run: func(cmd *cobra.Command, args []string) {
			runTranslate(translateArgs{
				inputPath: inputPath, limit: limit,
				provider: provider, apiKey: apiKey, model: model, baseURL: baseURL,
				workers: workers, timeout: timeout, proxy: proxy,
			})
		},
	}

	// Target selection
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "JSON file or directory to translate (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum pending strings to send per file (0 = all)")

	// Provider selection
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: claude, deepseek, qwen (default from .jlokit.yaml)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: provider default)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or provider env var, or 'jlokit auth set')")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")

	// Parallelization
	cmd.Flags().IntVar(&workers, "workers", 1, "Files to translate concurrently in directory mode")

	// Network
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = configured default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")

	// Provider completion
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"claude\tAnthropic Claude — API key",
			"deepseek\tDeepSeek — API key",
			"qwen\tQwen via DashScope — API key",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	// Model completion (provider-aware)
	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		p, _ := cmd.Flags().GetString("provider")
		switch p {
		case translate.ProviderClaude:
			return []string{"claude-sonnet-4-5-20250929", "claude-haiku-4-5-20251001"}, cobra.ShellCompDirectiveNoFileComp
		case translate.ProviderDeepSeek:
			return []string{"deepseek-chat", "deepseek-reasoner"}, cobra.ShellCompDirectiveNoFileComp
		case translate.ProviderQwen:
			return []string{"qwen-mt-turbo", "qwen-mt-plus"}, cobra.ShellCompDirectiveNoFileComp
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	})

	return cmd
}

type translateArgs struct {
	inputPath                        string
	limit                            int
	provider, apiKey, model, baseURL string
	workers                          int
	timeout                          time.Duration
	proxy                            string
}

func runTranslate(a translateArgs) {
	proj := detectProject()
	loc := resolveLocale(proj)

	// Flag > config file > built-in default, for every provider setting.
	providerID := a.provider
	if providerID == "" {
		providerID = proj.Translator.Provider
	}
	model := a.model
	if model == "" {
		model = proj.Translator.Model
	}
	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = proj.Translator.BaseURL
	}
	proxy := a.proxy
	if proxy == "" {
		proxy = proj.Translator.Proxy
	}
	timeout := a.timeout
	if timeout == 0 && proj.Translator.Timeout > 0 {
		timeout = time.Duration(proj.Translator.Timeout) * time.Second
	}

	// Resolve API key from flag, environment, or credentials store
	key := settings.ResolveAPIKey(providerID, a.apiKey)
	if key == "" {
		logError("%s", apiKeyGuidance(providerID))
		os.Exit(1)
	}

	logInfo("Provider: %s, Model: %s, Locale: %s", providerID, modelLabel(providerID, model), loc)

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning(i18n.T("Translation interrupted, exiting"))
		cancel()
	}()

	res, err := translate.Run(ctx, translate.Options{
		Provider:  providerID,
		Model:     model,
		BaseURL:   baseURL,
		APIKey:    key,
		Proxy:     proxy,
		Timeout:   timeout,
		InputPath: a.inputPath,
		Locale:    loc,
		Limit:     a.limit,
		Workers:   a.workers,
		OnLog: func(format string, args ...any) {
			logInfo(format, args...)
		},
		OnError: func(format string, args ...any) {
			logError(format, args...)
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			os.Exit(1)
		}
		logError("%v", err)
		os.Exit(1)
	}

	if res.Translated == 0 {
		logSuccess(i18n.T("All strings already translated"))
		return
	}
	logSuccess(i18n.T("Translation complete")+": %d strings in %d file(s)", res.Translated, len(res.Outputs))
}

// modelLabel shows the explicit model or the provider default.
func modelLabel(providerID, model string) string {
	if model != "" {
		return model
	}
	if prov, ok := translate.DefaultProviders()[strings.ToLower(providerID)]; ok {
		return prov.Model + " (default)"
	}
	return "(default)"
}

// apiKeyGuidance explains every way to supply a provider API key.
func apiKeyGuidance(providerID string) string {
	envVar := settings.EnvVarForProvider(providerID)
	if envVar == "" {
		envVar = "<PROVIDER>_API_KEY"
	}
	return fmt.Sprintf("No API key found for provider '%s'.\n\n"+
		"Provide one of:\n"+
		"  1. Flag:        --api-key YOUR_KEY\n"+
		"  2. Environment: export %s=YOUR_KEY\n"+
		"  3. Stored:      jlokit auth set %s",
		providerID, envVar, providerID)
}

// ---------------------------------------------------------------------------
// generate (raw + translation arrays -> record store, then badge refresh)
// ---------------------------------------------------------------------------

func newGenerateCmd() *cobra.Command {
	var (
		rawFile   string
		transFile string
		author    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Merge translations into the record store and refresh the badge",
		Long: `Merge a raw-string array and a parallel translation array into the
consolidated record store {data_dir}/stringliteral.json, then recompute
the locale's coverage and rewrite its badge in the status README.

Existing records keep their entries for other locales; only the target
locale's entry is set. New raw strings are appended in input order. A
length mismatch between the two arrays is a warning: raw strings past
the end of the translation array get an empty translation.

Called without files, only the badge is refreshed.

Examples:
  jlokit generate -r raw/scenario_raw.json -t raw/scenario_raw_zh-CN.json
  jlokit generate -r raw/items_raw.json -t fixes.json -a alice
  jlokit generate            # badge refresh only`,
		Run: func(cmd *cobra.Command, args []string) {
			runGenerate(rawFile, transFile, author)
		},
	}

	cmd.Flags().StringVarP(&rawFile, "raw-file", "r", "", "JSON array of raw source strings")
	cmd.Flags().StringVarP(&transFile, "trans-file", "t", "", "JSON array of translations, parallel to --raw-file")
	cmd.Flags().StringVarP(&author, "author", "a", "ai", "Provenance recorded on each translation entry")

	return cmd
}

func runGenerate(rawFile, transFile, author string) {
	proj := detectProject()
	loc := resolveLocale(proj)

	if (rawFile == "") != (transFile == "") {
		logError("--raw-file and --trans-file must be given together")
		os.Exit(1)
	}

	if rawFile != "" {
		res, err := merge.Run(merge.Options{
			RawFile:    rawFile,
			TransFile:  transFile,
			TargetFile: proj.StringLiteralPath(),
			Locale:     loc,
			Author:     author,
			OnLog: func(format string, args ...any) {
				logInfo(format, args...)
			},
		})
		if err != nil {
			logError("%v", err)
			os.Exit(1)
		}
		logSuccess(i18n.T("Merge complete")+": %d added, %d updated, %d total", res.Added, res.Updated, res.Total)
	}

	if !proj.HasDataDir() {
		logInfo("Data directory %s does not exist, skipping progress update", proj.DataDir)
		return
	}

	total, translated, err := progress.Analyze(proj.RawDir, proj.DataDir, loc)
	if err != nil {
		logError("Analyzing progress: %v", err)
		os.Exit(1)
	}
	logInfo("%s %s: %d/%d (%.1f%%)", i18n.T("Translation progress"), loc, translated, total, progress.Percent(translated, total))

	if err := progress.WriteBadge(proj.Readme, total, translated, loc); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	logSuccess(i18n.T("Progress badge updated in %s"), proj.Readme)
}

// ---------------------------------------------------------------------------
// status (read-only: project info + translation coverage)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show translation coverage per locale",
		Long: `Show project layout and translation coverage.

Counts the distinct raw strings across the raw lists and record stores
and how many store records carry a translation for the locale. Does not
modify any files.`,
		Run: func(cmd *cobra.Command, args []string) {
			runStatus(all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show coverage for every supported locale")

	return cmd
}

func runStatus(all bool) {
	proj := detectProject()

	// Project info header
	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Name:      %s\n", proj.Name)
	fmt.Fprintf(os.Stderr, "  Root:      %s\n", proj.Root)
	fmt.Fprintf(os.Stderr, "  Raw dir:   %s\n", proj.RawDir)
	fmt.Fprintf(os.Stderr, "  Data dir:  %s\n", proj.DataDir)
	fmt.Fprintf(os.Stderr, "  Readme:    %s\n", proj.Readme)
	if proj.HasConfig {
		fmt.Fprintf(os.Stderr, "  Config:    %s\n", config.FileName)
	} else {
		fmt.Fprintf(os.Stderr, "  Config:    built-in defaults (run 'jlokit init')\n")
	}
	fmt.Fprintln(os.Stderr)

	locales := []string{resolveLocale(proj)}
	if all {
		locales = locale.Supported()
	}

	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Translation progress"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "\n%-8s %-10s %-12s %-8s %s\n", "Locale", "Name", "Translated", "Total", "Progress")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	for _, loc := range locales {
		total, translated, err := progress.Analyze(proj.RawDir, proj.DataDir, loc)
		if err != nil {
			logError("Analyzing %s: %v", loc, err)
			os.Exit(1)
		}
		percent := int(progress.Percent(translated, total))
		fmt.Fprintf(os.Stderr, "%-8s %-10s %-12d %-8d %s\n",
			loc, locale.Resolve(loc).Name, translated, total, progressBar(percent, 20))
	}
	fmt.Fprintln(os.Stderr)
}

// progressBar renders a colored bar, clamping percent to [0, 100].
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := width * percent / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := colorYellow
	switch {
	case percent < 50:
		color = colorRed
	case percent >= 100:
		color = colorGreen
	}
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// ---------------------------------------------------------------------------
// init (write the default project configuration)
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " project configuration",
		Long: `Write a commented default ` + config.FileName + ` into the project root and
create the raw/ and data/ working directories. An existing configuration
is only overwritten with --force.`,
		Run: func(cmd *cobra.Command, args []string) {
			runInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+config.FileName)

	return cmd
}

func runInit(force bool) {
	path, err := config.WriteDefault(rootDir, force)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	logSuccess(i18n.T("Configuration written to %s"), path)

	proj := detectProject()
	for _, dir := range []string{proj.RawDir, proj.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logError("Creating %s: %v", dir, err)
			os.Exit(1)
		}
	}
	logInfo("Working directories ready: %s, %s", proj.RawDir, proj.DataDir)
}

// ---------------------------------------------------------------------------
// auth (manage stored provider API keys)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage stored API keys for the AI translation providers.

Keys are stored in ` + "`$XDG_DATA_HOME/jlokit/auth.json`" + ` (0600). A key
passed with --api-key or found in the provider's environment variable
always takes precedence over the store.

Providers and their environment variables:
  claude    ANTHROPIC_API_KEY
  deepseek  DEEPSEEK_API_KEY
  qwen      DASHSCOPE_API_KEY

Examples:
  jlokit auth set claude              Prompt for a key and store it
  jlokit auth set deepseek --key sk-… Store a key non-interactively
  jlokit auth status                  Show stored keys and env vars
  jlokit auth remove qwen             Forget one provider's key
  jlokit auth remove --all            Forget every stored key`,
	}

	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthStatusCmd(),
		newAuthRemoveCmd(),
	)

	return cmd
}

// authProviders is the ordered provider list for auth output and completion.
var authProviders = []string{
	translate.ProviderClaude,
	translate.ProviderDeepSeek,
	translate.ProviderQwen,
}

func completeAuthProvider(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	completions := make([]string, 0, len(authProviders))
	for _, id := range authProviders {
		completions = append(completions, fmt.Sprintf("%s\t%s", id, translate.DefaultProviders()[id].Name))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func newAuthSetCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:               "set PROVIDER",
		Short:             "Store an API key for a provider",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeAuthProvider,
		Run: func(cmd *cobra.Command, args []string) {
			runAuthSet(args[0], key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key (omit to be prompted)")

	return cmd
}

func runAuthSet(providerID, key string) {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if _, ok := translate.DefaultProviders()[id]; !ok {
		logError("Unknown provider '%s' (valid: %s)", providerID, strings.Join(authProviders, ", "))
		os.Exit(1)
	}

	if key == "" {
		fmt.Fprintf(os.Stderr, "Enter API key for %s: ", id)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			logError("No input received")
			os.Exit(1)
		}
		key = strings.TrimSpace(scanner.Text())
	}
	if key == "" {
		logError("Empty API key")
		os.Exit(1)
	}

	if err := settings.SetAPIKey(id, key); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	logSuccess(i18n.T("API key for %s saved")+" (%s)", id, settings.MaskKey(key))
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls"},
		Short:   "Show stored API keys and environment variables",
		Run: func(cmd *cobra.Command, args []string) {
			runAuthStatus()
		},
	}
}

func runAuthStatus() {
	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Stored credentials"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	for _, id := range authProviders {
		if stored := settings.GetAPIKey(id); stored != "" {
			fmt.Fprintf(os.Stderr, "  %-10s %sconfigured%s (key: %s)\n", id, colorGreen, colorReset, settings.MaskKey(stored))
		} else {
			fmt.Fprintf(os.Stderr, "  %-10s %snot configured%s\n", id, colorRed, colorReset)
		}
	}

	fmt.Fprintf(os.Stderr, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
	for _, id := range authProviders {
		envVar := settings.EnvVarForProvider(id)
		if val := os.Getenv(envVar); val != "" {
			fmt.Fprintf(os.Stderr, "  %-20s %s%s%s (overrides stored key)\n", envVar+":", colorGreen, settings.MaskKey(val), colorReset)
		} else {
			fmt.Fprintf(os.Stderr, "  %-20s %snot set%s\n", envVar+":", colorRed, colorReset)
		}
	}

	if path := settings.FilePath(); path != "" {
		fmt.Fprintf(os.Stderr, "\n  Store: %s\n", path)
	}
	fmt.Fprintln(os.Stderr)
}

func newAuthRemoveCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:               "remove [PROVIDER]",
		Aliases:           []string{"rm"},
		Short:             "Forget stored API keys",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeAuthProvider,
		Run: func(cmd *cobra.Command, args []string) {
			runAuthRemove(args, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every stored key")

	return cmd
}

func runAuthRemove(args []string, all bool) {
	if all {
		if err := settings.RemoveAll(); err != nil {
			logError("%v", err)
			os.Exit(1)
		}
		logSuccess("All stored credentials removed")
		return
	}

	if len(args) == 0 {
		logError("Name a provider or pass --all")
		os.Exit(1)
	}

	id := strings.ToLower(strings.TrimSpace(args[0]))
	if err := settings.Remove(id); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	logSuccess(i18n.T("Credentials for %s removed"), id)
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// detectProject resolves the project layout or exits.
func detectProject() *config.Project {
	proj, err := config.Detect(rootDir)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	return proj
}

// resolveLocale applies flag > config > default and validates the result.
func resolveLocale(proj *config.Project) string {
	code := localeFlag
	if code == "" {
		code = proj.Locale
	}
	if code == "" {
		code = locale.Default
	}
	normalized, err := locale.Normalize(code)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	return normalized
}

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
