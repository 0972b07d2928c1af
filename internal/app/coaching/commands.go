package coaching

import "strings"

// Command is the classification of a raw user input.
type Command int

const (
	CommandPlain Command = iota
	CommandQuit
	CommandInterview
	CommandQuiz
	CommandTraining
)

// commandTokens drives classification. Entries are checked in order; exact
// entries require the whole trimmed, lower-cased input to equal the token,
// the rest match as substrings. New command tokens are added here, not as
// new branches.
var commandTokens = []struct {
	token    string
	exact    bool
	command  Command
	fragment string
}{
	{token: "/q", exact: true, command: CommandQuit},
	{token: "/interview", command: CommandInterview, fragment: "interview"},
	{token: "/quiz", command: CommandQuiz, fragment: "quiz"},
	{token: "/training", command: CommandTraining, fragment: "training"},
}

// ResolveCommand classifies raw input. Matching is case-insensitive on the
// trimmed input.
func ResolveCommand(raw string) Command {
	input := strings.ToLower(strings.TrimSpace(raw))
	for _, entry := range commandTokens {
		if entry.exact {
			if input == entry.token {
				return entry.command
			}
			continue
		}
		if strings.Contains(input, entry.token) {
			return entry.command
		}
	}
	return CommandPlain
}

// FragmentKey returns the instruction-fragment name selected by the
// command, or "" when the command carries no fragment.
func (c Command) FragmentKey() string {
	for _, entry := range commandTokens {
		if entry.command == c {
			return entry.fragment
		}
	}
	return ""
}

func (c Command) String() string {
	switch c {
	case CommandQuit:
		return "quit"
	case CommandInterview:
		return "interview"
	case CommandQuiz:
		return "quiz"
	case CommandTraining:
		return "training"
	default:
		return "plain"
	}
}
