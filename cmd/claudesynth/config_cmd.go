package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ohboyftw/ClaudeSynth/internal/config"
)

func newConfigCommand(cli *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit saved preferences",
	}
	cmd.AddCommand(newConfigShowCommand(cli))
	cmd.AddCommand(newConfigSetCommand(cli))
	cmd.AddCommand(newConfigTemplatesCommand(cli))
	return cmd
}

func newConfigShowCommand(cli *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := cli.loadPreferences()
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n\n", bold("Preferences file:"), cli.store.Path())
			fmt.Printf("  backend:    %s\n", prefs.DefaultBackend)
			model := prefs.DefaultModel
			if model == "" {
				model = gray("(auto-select)")
			}
			fmt.Printf("  model:      %s\n", model)
			fmt.Printf("  output:     %s\n", prefs.DefaultOutput)
			fmt.Printf("  max tokens: %d\n", prefs.MaxTokens)
			if prefs.OllamaHost != "" {
				fmt.Printf("  ollama:     %s\n", prefs.OllamaHost)
			}
			return nil
		},
	}
}

// settableKeys maps "config set" keys to their mutation. Kept explicit so an
// unknown key fails instead of silently writing a field nobody reads.
var settableKeys = []string{"backend", "model", "output", "max_tokens", "ollama_host"}

func newConfigSetCommand(cli *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update a single preference",
		Long: `Update a single preference and save the file.

Keys: backend (hosted|local), model, output, max_tokens, ollama_host.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			prefs, err := cli.loadPreferences()
			if err != nil {
				return err
			}

			switch key {
			case "backend":
				if value != config.BackendHosted && value != config.BackendLocal {
					return fmt.Errorf("backend must be %q or %q", config.BackendHosted, config.BackendLocal)
				}
				prefs.DefaultBackend = value
			case "model":
				prefs.DefaultModel = value
			case "output":
				prefs.DefaultOutput = value
			case "max_tokens":
				tokens, err := strconv.Atoi(value)
				if err != nil || tokens <= 0 {
					return fmt.Errorf("max_tokens must be a positive integer")
				}
				prefs.MaxTokens = tokens
			case "ollama_host":
				prefs.OllamaHost = value
			default:
				return fmt.Errorf("unknown key %q (valid: %v)", key, settableKeys)
			}

			if err := cli.store.Save(prefs); err != nil {
				return err
			}
			cli.prefs = &prefs
			fmt.Printf("%s %s = %s\n", green("✔"), key, value)
			return nil
		},
	}
}

func newConfigTemplatesCommand(cli *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage named guideline presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := cli.loadPreferences()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(prefs.Templates))
			for name := range prefs.Templates {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Printf("%s\n  %s\n", bold(name), prefs.Templates[name])
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <text>",
		Short: "Add or replace a guideline preset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, text := args[0], args[1]

			prefs, err := cli.loadPreferences()
			if err != nil {
				return err
			}
			if prefs.Templates == nil {
				prefs.Templates = map[string]string{}
			}
			prefs.Templates[name] = text

			if err := cli.store.Save(prefs); err != nil {
				return err
			}
			cli.prefs = &prefs
			fmt.Printf("%s template %q saved\n", green("✔"), name)
			return nil
		},
	})

	return cmd
}
