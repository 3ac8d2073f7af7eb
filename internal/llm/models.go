package llm

import "strings"

// RecommendedModels is the curated "good for code" allow-list for the local
// backend, in preference order. The ordering is policy rather than contract;
// tests pin the current choice.
var RecommendedModels = []string{
	"deepseek-coder:6.7b",
	"qwen3:8b",
	"llama3:8b-instruct-q4_0",
	"mistral-openorca:7b-q4_K_M",
	"opencoder:8b",
}

// codingKeywords matches model names that look suitable for code work when
// none of the allow-listed models is installed.
var codingKeywords = []string{"coder", "code", "deepseek", "llama3", "qwen", "mistral"}

// IsRecommendedModel reports whether name is on the allow-list.
func IsRecommendedModel(name string) bool {
	for _, m := range RecommendedModels {
		if m == name {
			return true
		}
	}
	return false
}

// PickDefaultModel selects a default from the locally available models:
// first allow-list hit wins, then the first name containing a coding
// keyword, then the first available model. Returns "" when none exist.
func PickDefaultModel(available []string) string {
	for _, want := range RecommendedModels {
		for _, have := range available {
			if have == want {
				return want
			}
		}
	}

	for _, have := range available {
		lower := strings.ToLower(have)
		for _, keyword := range codingKeywords {
			if strings.Contains(lower, keyword) {
				return have
			}
		}
	}

	if len(available) > 0 {
		return available[0]
	}
	return ""
}
