package coaching

import "strings"

const (
	minOutputTokens = 200
	maxOutputTokens = 600
)

// tokenBudget derives the maximum-output-length constraint for one model
// invocation. Whitespace-separated word counting stands in for the model's
// true tokenization; the clamp keeps the result in [200, 600] regardless of
// prompt size.
func tokenBudget(contextWindow int, prompt string) int {
	budget := contextWindow - len(strings.Fields(prompt))
	if budget < minOutputTokens {
		return minOutputTokens
	}
	if budget > maxOutputTokens {
		return maxOutputTokens
	}
	return budget
}
