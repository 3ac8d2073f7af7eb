package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ohboyftw/ClaudeSynth/internal/config"
	"github.com/ohboyftw/ClaudeSynth/internal/llm"
	"github.com/ohboyftw/ClaudeSynth/internal/logging"
	"github.com/ohboyftw/ClaudeSynth/internal/synth"
)

func newGenerateCommand(cli *cliState) *cobra.Command {
	var (
		task           string
		examplesPath   string
		guidelinesPath string
		templateName   string
		outputPath     string
		preview        bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a context file for a coding task",
		Long: `Generate a markdown context file for a coding task.

The task can be given inline or read from a file with @:
  claudesynth generate --task "Add JWT authentication"
  claudesynth generate --task @task.txt --examples ./src/auth.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := cli.loadPreferences()
			if err != nil {
				return err
			}

			taskText, err := resolveTaskArg(task)
			if err != nil {
				return err
			}

			examples, err := readOptionalFile(examplesPath)
			if err != nil {
				return err
			}
			guidelines, err := readOptionalFile(guidelinesPath)
			if err != nil {
				return err
			}
			if templateName != "" {
				preset := prefs.Template(templateName)
				if guidelines == "" {
					guidelines = preset
				} else {
					guidelines = guidelines + "\n\n" + preset
				}
			}

			providerConfig, err := cli.providerConfig()
			if err != nil {
				return err
			}
			provider, err := llm.New(providerConfig)
			if err != nil {
				return err
			}

			orch := synth.New(provider, synth.Options{
				Logger: logging.NewComponentLogger("generate"),
			})

			fmt.Printf("%s Generating context via %s backend...\n", cyan("→"), providerConfig.Backend)

			result, err := orch.GenerateContext(cmd.Context(), taskText, examples, guidelines)
			if err != nil {
				return err
			}

			output := outputPath
			if output == "" {
				output = prefs.DefaultOutput
			}
			if err := config.AtomicWrite(output, []byte(result.Markdown), 0o644); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}

			fmt.Printf("%s Context written to %s %s\n",
				green("✔"), bold(output),
				gray(fmt.Sprintf("(%s/%s, ~%d prompt tokens)", result.Generation.Backend, result.Generation.ModelID, result.Tokens)))

			if preview {
				return printPreview(result.Markdown)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "Coding task description, or @path to read it from a file (required)")
	cmd.Flags().StringVar(&examplesPath, "examples", "", "Path to a file with code examples")
	cmd.Flags().StringVar(&guidelinesPath, "guidelines", "", "Path to a file with project guidelines")
	cmd.Flags().StringVar(&templateName, "template", "", "Named guideline preset from preferences")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	cmd.Flags().BoolVar(&preview, "preview", false, "Render the generated context in the terminal")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

// resolveTaskArg reads the task from a file when given as @path.
func resolveTaskArg(task string) (string, error) {
	if !strings.HasPrefix(task, "@") {
		return task, nil
	}
	path := strings.TrimPrefix(task, "@")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read task file: %w", err)
	}
	return string(data), nil
}

// readOptionalFile returns "" for an empty path.
func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// printPreview renders markdown to the terminal, falling back to raw text
// when no TTY is attached.
func printPreview(markdown string) error {
	fmt.Printf("\n%s\n", bold("--- Generated Context Preview ---"))
	if !isTTY() {
		fmt.Println(markdown)
		return nil
	}
	renderer, err := newMarkdownRenderer()
	if err != nil {
		fmt.Println(markdown)
		return nil
	}
	return renderer.renderAndPrint(markdown)
}
