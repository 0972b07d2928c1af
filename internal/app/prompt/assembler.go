package prompt

import (
	"fmt"
	"strings"

	"github.com/jobcoach/coach-api/internal/domain"
)

// Role-tagged block delimiters, llama3 chat format. The exact syntax is a
// backend detail; the contract is that they are stable and unambiguous so
// the model can tell speakers apart.
const (
	systemBlock    = "<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n%s\n<|eot_id|>"
	userBlock      = "<|start_header_id|>user<|end_header_id|>\n%s\n<|eot_id|>"
	assistantBlock = "<|start_header_id|>assistant<|end_header_id|>\n%s\n<|eot_id|>"
)

// Input carries everything a single prompt render needs.
type Input struct {
	System         string // base instructions plus optional mode fragment
	JobDescription string
	History        []domain.Turn
	UserInput      string

	// AssistantEcho, when set, appends a trailing assistant block. Used by
	// the streaming bookkeeping when a just-produced answer must be echoed.
	AssistantEcho string
}

// Assembler renders bounded prompts from session state.
type Assembler struct {
	maxHistoryTurns int
}

// NewAssembler returns an assembler that renders at most maxHistoryTurns
// trailing user/assistant turns per prompt. 0 disables windowing.
func NewAssembler(maxHistoryTurns int) *Assembler {
	return &Assembler{maxHistoryTurns: maxHistoryTurns}
}

// Build renders the prompt: system block (instructions + job description),
// then the windowed history in original order, then the current user input.
func (a *Assembler) Build(in Input) string {
	var b strings.Builder

	system := strings.TrimSpace(in.System)
	b.WriteString(fmt.Sprintf(systemBlock, system+"\nJob Description: "+in.JobDescription))

	for _, turn := range a.window(in.History) {
		switch turn.Speaker {
		case domain.SpeakerUser:
			b.WriteString(fmt.Sprintf(userBlock, turn.Text))
		case domain.SpeakerAssistant:
			b.WriteString(fmt.Sprintf(assistantBlock, turn.Text))
		}
	}

	b.WriteString(fmt.Sprintf(userBlock, in.UserInput))

	if in.AssistantEcho != "" {
		b.WriteString(fmt.Sprintf(assistantBlock, in.AssistantEcho))
	}

	return b.String()
}

// window keeps the trailing maxHistoryTurns conversational turns. System
// notes are skipped entirely; they never render as dialogue.
func (a *Assembler) window(history []domain.Turn) []domain.Turn {
	conv := make([]domain.Turn, 0, len(history))
	for _, t := range history {
		if t.Speaker == domain.SpeakerUser || t.Speaker == domain.SpeakerAssistant {
			conv = append(conv, t)
		}
	}

	if a.maxHistoryTurns > 0 && len(conv) > a.maxHistoryTurns {
		conv = conv[len(conv)-a.maxHistoryTurns:]
	}
	return conv
}
