package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohboyftw/ClaudeSynth/internal/llm"
)

func newModelsCommand(cli *cliState) *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Aliases: []string{"list-models"},
		Short:   "List models installed on the local backend",
		Long: `List the models the local Ollama server has installed. Models on the
curated coding allow-list are marked; the first marked model is what gets
auto-selected when no default model is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			providerConfig, err := cli.providerConfig()
			if err != nil {
				return err
			}
			providerConfig.Backend = llm.BackendLocal

			provider, err := llm.New(providerConfig)
			if err != nil {
				return err
			}
			lister, ok := provider.(llm.ModelLister)
			if !ok {
				return fmt.Errorf("local backend does not support model listing")
			}

			models, err := lister.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Printf("%s No models installed. Pull one first, e.g.:\n", yellow("!"))
				for _, name := range llm.RecommendedModels {
					fmt.Printf("  ollama pull %s\n", name)
				}
				return nil
			}

			defaultModel := llm.PickDefaultModel(models)
			fmt.Printf("%s\n", bold("Installed models:"))
			for _, name := range models {
				marker := " "
				note := ""
				if llm.IsRecommendedModel(name) {
					marker = green("*")
					note = gray(" (recommended for code)")
				}
				if name == defaultModel {
					note += cyan(" [default]")
				}
				fmt.Printf("  %s %s%s\n", marker, name, note)
			}
			return nil
		},
	}
}
