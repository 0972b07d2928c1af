package domain

// SessionID is an opaque, externally assigned session identifier.
type SessionID string

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"

	// SpeakerSystem marks bookkeeping notes (e.g. "job description
	// provided"). System turns are recorded in history but never rendered
	// as conversational blocks in a prompt.
	SpeakerSystem Speaker = "system"
)

// InterviewState tracks where a session is in the interview sub-flow.
type InterviewState string

const (
	StateIdle       InterviewState = "idle"
	StateInProgress InterviewState = "in_progress"
	StateFinished   InterviewState = "finished"
)
