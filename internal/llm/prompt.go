package llm

import (
	"fmt"
	"strings"
)

// Chain-of-thought section markers. The prompt asks the model to reason
// before writing the final document; splitSynthesis separates the two.
const (
	reasoningMarker = "### Reasoning"
	contextMarker   = "### Context"
)

const systemPrompt = `You are a coding assistant that writes markdown context files for interactive coding sessions. A context file restates the task, captures the conventions visible in the provided code, and gives concrete implementation guidance. Write clean, well-structured markdown.`

// buildUserPrompt renders the assembled request into the chain-of-thought
// prompt shared by both backends. Behavior differs between providers only
// in transport and error classification, never in prompt shape.
func buildUserPrompt(req GenerationRequest) string {
	var b strings.Builder

	b.WriteString("Task Description:\n")
	b.WriteString(req.TaskDescription)
	b.WriteString("\n\n")

	b.WriteString("Code Examples:\n")
	if req.CodeExamples == "" {
		b.WriteString("(none provided)")
	} else {
		b.WriteString(req.CodeExamples)
	}
	b.WriteString("\n\n")

	b.WriteString("Project Guidelines:\n")
	if req.ProjectGuidelines == "" {
		b.WriteString("(none provided)")
	} else {
		b.WriteString(req.ProjectGuidelines)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, `Think before you write. First, under a %q heading, briefly reason about what makes good context for this task: relevant conventions, components, and pitfalls. Then, under a %q heading, write the complete markdown context file.`,
		reasoningMarker, contextMarker)

	return b.String()
}

// splitSynthesis separates the model's reasoning from the final markdown
// body. When the model ignored the markers the whole content is the body
// and the reasoning trace is absent (nil, never an empty string).
func splitSynthesis(content string) (reasoning *string, body string) {
	ctxIdx := strings.Index(content, contextMarker)
	if ctxIdx < 0 {
		return nil, strings.TrimSpace(content)
	}

	body = strings.TrimSpace(content[ctxIdx+len(contextMarker):])

	head := content[:ctxIdx]
	if rIdx := strings.Index(head, reasoningMarker); rIdx >= 0 {
		head = head[rIdx+len(reasoningMarker):]
	}
	head = strings.TrimSpace(head)
	if head == "" {
		return nil, body
	}
	return &head, body
}
