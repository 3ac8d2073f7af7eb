package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ohboyftw/ClaudeSynth/internal/config"
	"github.com/ohboyftw/ClaudeSynth/internal/llm"
	"github.com/ohboyftw/ClaudeSynth/internal/logging"
)

const version = "0.1.0"

// Color definitions shared across commands.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// isTTY checks if the current environment has a TTY available.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// cliState carries flag values and the lazily created preferences store.
type cliState struct {
	backend string
	model   string
	tokens  int
	timeout time.Duration
	debug   bool
	store   *config.Store
	prefs   *config.Preferences
}

// loadPreferences creates the store on first use and caches the loaded document.
func (cli *cliState) loadPreferences() (config.Preferences, error) {
	if cli.prefs != nil {
		return *cli.prefs, nil
	}
	if cli.store == nil {
		store, err := config.NewStore()
		if err != nil {
			return config.Preferences{}, err
		}
		cli.store = store
	}
	prefs, err := cli.store.Load()
	if err != nil {
		return config.Preferences{}, err
	}
	cli.prefs = &prefs
	return prefs, nil
}

// providerConfig merges explicit flags over saved preferences over built-in
// defaults into the provider configuration.
func (cli *cliState) providerConfig() (llm.Config, error) {
	prefs, err := cli.loadPreferences()
	if err != nil {
		return llm.Config{}, err
	}

	backend := cli.backend
	if backend == "" {
		backend = prefs.DefaultBackend
	}

	model := cli.model
	if model == "" {
		model = prefs.DefaultModel
	}

	maxTokens := cli.tokens
	if maxTokens <= 0 {
		maxTokens = prefs.MaxTokens
	}

	baseURL := viper.GetString("ollama_host")
	if baseURL == "" {
		baseURL = prefs.OllamaHost
	}

	return llm.Config{
		Backend:   llm.Backend(backend),
		Model:     model,
		MaxTokens: maxTokens,
		APIKey:    viper.GetString("api_key"),
		BaseURL:   baseURL,
		Timeout:   cli.timeout,
	}, nil
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	cli := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "claudesynth",
		Short: "Synthesize markdown context files for coding sessions",
		Long: fmt.Sprintf(`%s

claudesynth turns a coding task, code examples, and project guidelines into a
structured markdown context file by asking a text-generation backend (hosted
Anthropic API or a local Ollama server) for a chain-of-thought write-up.

%s
  claudesynth generate --task "Add JWT authentication" --examples ./auth.go
  claudesynth generate --task @task.txt --backend hosted --output claude.md
  claudesynth interactive
  claudesynth models`,
			bold("ClaudeSynth "+version),
			bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cli.debug {
				logging.SetLevel(logging.DebugLevel)
				logging.EchoToConsole(os.Stderr)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cli.backend, "backend", "b", "", "Backend to use: hosted or local")
	rootCmd.PersistentFlags().StringVarP(&cli.model, "model", "m", "", "Model identifier")
	rootCmd.PersistentFlags().IntVarP(&cli.tokens, "tokens", "t", 0, "Max output tokens")
	rootCmd.PersistentFlags().DurationVar(&cli.timeout, "timeout", 0, "Bound on a single backend call (0 uses the backend default)")
	rootCmd.PersistentFlags().BoolVarP(&cli.debug, "debug", "d", false, "Debug logging to stderr")

	// Environment bindings: the hosted API key and local server address are
	// never persisted in preferences.
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("ollama_host", "OLLAMA_HOST")

	rootCmd.AddCommand(newGenerateCommand(cli))
	rootCmd.AddCommand(newInteractiveCommand(cli))
	rootCmd.AddCommand(newModelsCommand(cli))
	rootCmd.AddCommand(newConfigCommand(cli))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("claudesynth %s\n", version)
		},
	}
}
