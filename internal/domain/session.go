package domain

// Turn is one immutable message in a session's history.
type Turn struct {
	Speaker Speaker
	Text    string
}

// Session is the mutable per-conversation state. All access must go through
// the coaching registry, which serializes mutations per session id.
type Session struct {
	ID SessionID

	// History is append-only; it is never cleared, not even by /q.
	History []Turn

	// JobDescription is set exactly once, by the first substantive user
	// input (or a scraped posting), and is immutable afterwards.
	JobDescription    string
	JobDescriptionSet bool

	State          InterviewState
	QuestionsAsked int
	MaxQuestions   int
	SummaryPoints  []string
}

func NewSession(id SessionID, maxQuestions int) *Session {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Session{
		ID:           id,
		State:        StateIdle,
		MaxQuestions: maxQuestions,
	}
}

// DefaultMaxQuestions is the number of interview questions asked before the
// closing summary is produced.
const DefaultMaxQuestions = 5

// Append records a turn at the end of the history.
func (s *Session) Append(speaker Speaker, text string) Turn {
	t := Turn{Speaker: speaker, Text: text}
	s.History = append(s.History, t)
	return t
}

// ResetInterview zeroes the interview-related fields. History and the job
// description are untouched.
func (s *Session) ResetInterview() {
	s.State = StateIdle
	s.QuestionsAsked = 0
	s.SummaryPoints = nil
}
