package coaching

import (
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```.*?```")

const noSummary = "```No summary generated.\n```"

// ExtractSummary derives the closing interview summary from the final
// answer. Precedence: a fenced code block verbatim; else the "-" bullet
// lines wrapped in fences; else a fixed placeholder. The result is always
// fenced.
func ExtractSummary(text string) string {
	if block := fencedBlockRe.FindString(text); block != "" {
		return block
	}

	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			bullets = append(bullets, line)
		}
	}
	if len(bullets) > 0 {
		return "```\n" + strings.Join(bullets, "\n") + "\n```"
	}

	return noSummary
}
