package synth

import (
	"fmt"
	"strings"

	"github.com/ohboyftw/ClaudeSynth/internal/llm"
)

const (
	titleLimit         = 80
	missingReasonTrace = "(not provided by this backend)"
)

// Render turns a provider result into the final markdown document. Pure
// formatting: no I/O, no provider awareness beyond the result fields.
func Render(req llm.GenerationRequest, result llm.GenerationResult) string {
	reasoning := missingReasonTrace
	if result.ReasoningTrace != nil {
		reasoning = *result.ReasoningTrace
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Context for: %s\n\n", titleLine(req.TaskDescription))
	fmt.Fprintf(&b, "## Task\n%s\n\n", req.TaskDescription)
	fmt.Fprintf(&b, "## Reasoning\n%s\n\n", reasoning)
	fmt.Fprintf(&b, "## Guidance\n%s\n\n", result.MarkdownBody)
	fmt.Fprintf(&b, "---\nGenerated by %s/%s\n", result.Backend, result.ModelID)
	return b.String()
}

// titleLine extracts the first line of the task, truncated to 80 characters.
func titleLine(task string) string {
	line := task
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	runes := []rune(line)
	if len(runes) > titleLimit {
		line = string(runes[:titleLimit])
	}
	return line
}
