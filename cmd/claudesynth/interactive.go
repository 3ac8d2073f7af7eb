package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ohboyftw/ClaudeSynth/internal/config"
	"github.com/ohboyftw/ClaudeSynth/internal/llm"
	"github.com/ohboyftw/ClaudeSynth/internal/logging"
	"github.com/ohboyftw/ClaudeSynth/internal/synth"
)

func newInteractiveCommand(cli *cliState) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Generate a context file through guided prompts",
		Long: `Collect the task, code examples, and project guidelines through guided
prompts, preview the generated context, and accept, regenerate, edit, or
abort before anything is written to disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				return fmt.Errorf("interactive mode requires a terminal; use 'claudesynth generate' instead")
			}

			prefs, err := cli.loadPreferences()
			if err != nil {
				return err
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
				Logger: logging.NewComponentLogger("interactive"),
			})

			fmt.Printf("%s backend: %s\n\n", bold("ClaudeSynth"), cyan(string(providerConfig.Backend)))

			session := synth.NewSession(orch, &promptIO{})
			if err := session.Run(cmd.Context()); err != nil {
				return err
			}
			result := session.Result()

			output, err := promptOutputPath(prefs.DefaultOutput)
			if err != nil {
				return synth.ErrAborted
			}
			if err := config.AtomicWrite(output, []byte(result.Markdown), 0o644); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}
			fmt.Printf("%s Context written to %s\n", green("✔"), bold(output))

			return offerSaveDefaults(cli, result)
		},
	}
}

// promptIO implements synth.SessionIO over promptui prompts. Examples and
// guidelines are entered as file paths; the typed paths are remembered so an
// edit round pre-fills them, while the session only ever sees file contents.
type promptIO struct {
	examplesPath   string
	guidelinesPath string
}

func (p *promptIO) CollectFields(prior synth.Fields) (synth.Fields, error) {
	task, err := (&promptui.Prompt{
		Label:   "Task description",
		Default: prior.Task,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("task description is required")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return synth.Fields{}, err
	}

	examplesPath, err := (&promptui.Prompt{
		Label:    "Code examples file (optional, enter to skip)",
		Default:  p.examplesPath,
		Validate: validateOptionalPath,
	}).Run()
	if err != nil {
		return synth.Fields{}, err
	}

	guidelinesPath, err := (&promptui.Prompt{
		Label:    "Project guidelines file (optional, enter to skip)",
		Default:  p.guidelinesPath,
		Validate: validateOptionalPath,
	}).Run()
	if err != nil {
		return synth.Fields{}, err
	}
	p.examplesPath = examplesPath
	p.guidelinesPath = guidelinesPath

	fields, err := resolveFieldFiles(task, examplesPath, guidelinesPath)
	if err != nil {
		return synth.Fields{}, err
	}

	fmt.Printf("\n%s Generating...\n", cyan("→"))
	return fields, nil
}

// validateOptionalPath re-prompts on a path that does not point at a regular
// file; an empty answer skips the field.
func validateOptionalPath(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("cannot read %s", input)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", input)
	}
	return nil
}

// resolveFieldFiles turns the collected answers into session fields, reading
// the examples and guidelines files when paths were given.
func resolveFieldFiles(task, examplesPath, guidelinesPath string) (synth.Fields, error) {
	examples, err := readOptionalFile(strings.TrimSpace(examplesPath))
	if err != nil {
		return synth.Fields{}, err
	}
	guidelines, err := readOptionalFile(strings.TrimSpace(guidelinesPath))
	if err != nil {
		return synth.Fields{}, err
	}
	return synth.Fields{Task: task, Examples: examples, Guidelines: guidelines}, nil
}

func (p *promptIO) ShowPreview(result *synth.Result) error {
	fmt.Printf("\n%s %s\n\n",
		bold("--- Preview ---"),
		gray(fmt.Sprintf("(%s/%s, ~%d prompt tokens)", result.Generation.Backend, result.Generation.ModelID, result.Tokens)))

	renderer, err := newMarkdownRenderer()
	if err != nil {
		fmt.Println(result.Markdown)
		return nil
	}
	if err := renderer.renderAndPrint(result.Markdown); err != nil {
		fmt.Println(result.Markdown)
	}
	return nil
}

// reviewChoices maps the selection index to the session action.
var reviewChoices = []struct {
	label  string
	action synth.Action
}{
	{"Accept and save", synth.ActionAccept},
	{"Regenerate with the same inputs", synth.ActionRegenerate},
	{"Edit the inputs", synth.ActionEdit},
	{"Abort", synth.ActionAbort},
}

func (p *promptIO) ChooseAction() (synth.Action, error) {
	labels := make([]string, len(reviewChoices))
	for i, choice := range reviewChoices {
		labels[i] = choice.label
	}

	index, _, err := (&promptui.Select{
		Label: "What next",
		Items: labels,
	}).Run()
	if err != nil {
		return synth.ActionAbort, err
	}
	return reviewChoices[index].action, nil
}

func (p *promptIO) ReportError(err error) bool {
	fmt.Printf("\n%s %v\n", red("Generation failed:"), err)

	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) && providerErr.Hint != "" {
		fmt.Printf("%s %s\n", yellow("Hint:"), providerErr.Hint)
	}

	_, retryErr := (&promptui.Prompt{
		Label:     "Adjust inputs and try again",
		IsConfirm: true,
		Default:   "y",
	}).Run()
	return retryErr == nil
}

func promptOutputPath(defaultPath string) (string, error) {
	return (&promptui.Prompt{
		Label:   "Output file",
		Default: defaultPath,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("output path is required")
			}
			return nil
		},
	}).Run()
}

// offerSaveDefaults lets the operator persist the backend and model that just
// produced an accepted result. Declining is not an error.
func offerSaveDefaults(cli *cliState, result *synth.Result) error {
	prefs, err := cli.loadPreferences()
	if err != nil {
		return err
	}
	backend := string(result.Generation.Backend)
	model := result.Generation.ModelID
	if prefs.DefaultBackend == backend && prefs.DefaultModel == model {
		return nil
	}

	_, err = (&promptui.Prompt{
		Label:     fmt.Sprintf("Save %s/%s as your default backend and model", backend, model),
		IsConfirm: true,
	}).Run()
	if err != nil {
		return nil
	}

	prefs.DefaultBackend = backend
	prefs.DefaultModel = model
	if err := cli.store.Save(prefs); err != nil {
		return err
	}
	cli.prefs = &prefs
	fmt.Printf("%s Preferences updated\n", green("✔"))
	return nil
}
