package domain

import "context"

// ModelClient is the language-model backend. Generate returns the complete
// text of a single invocation; GenerateStream yields text fragments through
// emit until the stream is exhausted or fails. Both honor maxOutputTokens as
// the output-length cap. ContextWindow reports the configured combined
// input+output capacity used for budget arithmetic.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
	GenerateStream(ctx context.Context, prompt string, maxOutputTokens int, emit func(fragment string) error) error
	ContextWindow() int
}

// FragmentStore resolves named instruction fragments. A missing name is an
// error, never an empty string.
type FragmentStore interface {
	Fragment(name string) (string, error)
}

// Archive is the persistence collaborator. Writes are fire-and-forget from
// the orchestration core's point of view; History hydrates a session that is
// not yet resident in memory.
type Archive interface {
	SaveTurn(ctx context.Context, sessionID SessionID, turn Turn) error
	SaveJobDescription(ctx context.Context, sessionID SessionID, title, text string) error
	History(ctx context.Context, sessionID SessionID) ([]Turn, error)
}

// JobScraper turns a job-posting URL into a title and description.
type JobScraper interface {
	Scrape(ctx context.Context, url string) (title, description string, err error)
}
