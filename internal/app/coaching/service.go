package coaching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jobcoach/coach-api/internal/app/prompt"
	"github.com/jobcoach/coach-api/internal/domain"
	"github.com/jobcoach/coach-api/internal/observability"
)

// Fixed user-facing texts. These are part of the external contract: clients
// and tests match on them.
const (
	quitMessage = "You have exited all modes. Available commands:\n" +
		"/interview - Start interview simulation\n" +
		"/quiz - Start quiz mode\n" +
		"/training - Start training mode\n\n" +
		"Please enter a command to begin."

	ackScraped    = "Job description successfully extracted from URL. What would you like to do next?"
	ackRecognized = "Thank you for providing the job description. What would you like to do next?"
	ackFallback   = "Thanks! We've saved this as your job description. Let me know what you'd like to do next."

	finishedMessage = "The interview has concluded. If you want to start over, type /interview again."

	fallbackOpeningQuestion = "Let's begin the interview. Can you tell me about a challenging project you worked on and how you overcame it?"

	summaryHeading = "Here is your interview summary:"

	jobDescriptionNote = "User provided Job Description: "
)

// StreamErrorMarker is emitted in-band when a stream fails after producing
// partial output.
const StreamErrorMarker = "[stream interrupted]"

var (
	ErrEmptyInput       = errors.New("user input cannot be empty")
	ErrBackendFailure   = errors.New("model backend returned no usable output")
	ErrNoJobDescription = errors.New("no job description on file for this session")
)

var urlRe = regexp.MustCompile(`^https?://`)

// jobKeywords are phrases that make a first input read like a pasted job
// posting; they only pick the acknowledgment wording, the input is stored
// either way.
var jobKeywords = []string{
	"responsibilities", "qualifications", "we are looking for",
	"skills required", "your tasks", "requirements", "job description",
}

// Service is the conversation orchestration core: it classifies inbound
// turns, drives the interview state machine, assembles bounded prompts,
// invokes the model and post-processes its output before committing the
// exchange to session history.
type Service struct {
	registry  *Registry
	model     domain.ModelClient
	fragments domain.FragmentStore
	assembler *prompt.Assembler

	// archive and scraper are optional collaborators; nil disables them.
	archive domain.Archive
	scraper domain.JobScraper
}

func NewService(
	model domain.ModelClient,
	fragments domain.FragmentStore,
	assembler *prompt.Assembler,
	archive domain.Archive,
	scraper domain.JobScraper,
	maxQuestions int,
) *Service {
	return &Service{
		registry:  NewRegistry(maxQuestions),
		model:     model,
		fragments: fragments,
		assembler: assembler,
		archive:   archive,
		scraper:   scraper,
	}
}

// HandleTurn processes one inbound (sessionID, userInput) pair and returns
// the assistant's reply. Precedence: quit, job-description intake, interview
// start, interview in progress, interview finished, plain chat.
func (s *Service) HandleTurn(ctx context.Context, id domain.SessionID, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", ErrEmptyInput
	}

	sess, created, release := s.registry.Acquire(id)
	defer release()

	if created {
		s.hydrate(ctx, sess)
	}

	log := observability.LoggerFromContext(ctx).With("session_id", id)
	cmd := ResolveCommand(userInput)
	log.Info("handling turn", "command", cmd.String(), "state", string(sess.State))

	switch {
	case cmd == CommandQuit:
		return s.quit(ctx, sess, userInput, log), nil
	case !sess.JobDescriptionSet:
		return s.intake(ctx, sess, userInput, log), nil
	case cmd == CommandInterview:
		return s.startInterview(ctx, sess, userInput, log)
	case sess.State == domain.StateInProgress:
		return s.continueInterview(ctx, sess, userInput, log)
	case sess.State == domain.StateFinished:
		// Dead-end exchange: nothing is appended to history here.
		return finishedMessage, nil
	default:
		return s.plainChat(ctx, sess, cmd, userInput, log)
	}
}

// HandleTurnStream is the incremental variant of HandleTurn. Fragments are
// passed to emit as they arrive. When the stream fails or is cancelled after
// partial output, a fixed marker is emitted and the accumulated text is
// still committed as the assistant turn.
func (s *Service) HandleTurnStream(ctx context.Context, id domain.SessionID, userInput string, emit func(fragment string) error) error {
	if strings.TrimSpace(userInput) == "" {
		return ErrEmptyInput
	}

	sess, created, release := s.registry.Acquire(id)
	defer release()

	if created {
		s.hydrate(ctx, sess)
	}

	log := observability.LoggerFromContext(ctx).With("session_id", id)
	cmd := ResolveCommand(userInput)
	log.Info("handling streaming turn", "command", cmd.String(), "state", string(sess.State))

	switch {
	case cmd == CommandQuit:
		return emit(s.quit(ctx, sess, userInput, log))
	case !sess.JobDescriptionSet:
		return emit(s.intake(ctx, sess, userInput, log))
	case cmd == CommandInterview:
		return s.streamModelTurn(ctx, sess, cmd.FragmentKey(), userInput, true, true, emit, log)
	case sess.State == domain.StateInProgress:
		return s.streamModelTurn(ctx, sess, "interview", userInput, true, false, emit, log)
	case sess.State == domain.StateFinished:
		return emit(finishedMessage)
	default:
		return s.streamModelTurn(ctx, sess, cmd.FragmentKey(), userInput, false, false, emit, log)
	}
}

// Snapshot returns a copy of the session state for inspection. The second
// return reports whether the session is resident.
func (s *Service) Snapshot(id domain.SessionID) (domain.Session, bool) {
	return s.registry.Snapshot(id)
}

// ─────────────────────────────────────────────
// Transitions
// ─────────────────────────────────────────────

func (s *Service) quit(ctx context.Context, sess *domain.Session, input string, log *slog.Logger) string {
	sess.ResetInterview()
	s.commitExchange(ctx, sess, input, quitMessage)
	log.Info("session modes reset")
	return quitMessage
}

func (s *Service) intake(ctx context.Context, sess *domain.Session, input string, log *slog.Logger) string {
	title := ""
	text := strings.TrimSpace(input)
	ack := ackFallback

	switch {
	case urlRe.MatchString(text):
		if s.scraper != nil {
			scrapedTitle, scraped, err := s.scraper.Scrape(ctx, text)
			if err != nil {
				// Raw-URL fallback: the exchange never fails on a
				// scrape error, the URL itself becomes the text.
				log.Warn("scrape failed, storing raw url", "error", err)
				break
			}
			title, text, ack = scrapedTitle, scraped, ackScraped
		}
	case looksLikeJobDescription(text):
		ack = ackRecognized
	}

	sess.JobDescription = text
	sess.JobDescriptionSet = true

	note := sess.Append(domain.SpeakerSystem, jobDescriptionNote+text)
	s.archiveTurn(ctx, sess.ID, note, log)
	if s.archive != nil {
		if err := s.archive.SaveJobDescription(context.WithoutCancel(ctx), sess.ID, title, text); err != nil {
			log.Warn("archiving job description failed", "error", err)
		}
	}

	log.Info("job description stored", "length", len(text))
	return ack
}

func (s *Service) startInterview(ctx context.Context, sess *domain.Session, input string, log *slog.Logger) (string, error) {
	raw, err := s.invokeModel(ctx, sess, "interview", input)
	if err != nil {
		return "", err
	}

	reply := Sanitize(raw)
	if reply == "" {
		log.Warn("model produced no usable opening question, using fallback")
		reply = fallbackOpeningQuestion
	}

	// State flips only after the invocation succeeded, so a backend
	// failure leaves the session exactly as it was.
	sess.State = domain.StateInProgress
	sess.QuestionsAsked = 1
	sess.SummaryPoints = nil
	s.commitExchange(ctx, sess, input, reply)

	log.Info("interview started")
	return reply, nil
}

func (s *Service) continueInterview(ctx context.Context, sess *domain.Session, input string, log *slog.Logger) (string, error) {
	raw, err := s.invokeModel(ctx, sess, "interview", input)
	if err != nil {
		return "", err
	}

	reply := s.finishInterviewAnswer(sess, Sanitize(raw))
	s.commitExchange(ctx, sess, input, reply)

	log.Info("interview question answered",
		"questions_asked", sess.QuestionsAsked,
		"state", string(sess.State))
	return reply, nil
}

func (s *Service) plainChat(ctx context.Context, sess *domain.Session, cmd Command, input string, log *slog.Logger) (string, error) {
	raw, err := s.invokeModel(ctx, sess, cmd.FragmentKey(), input)
	if err != nil {
		return "", err
	}

	// Plain-chat replies are committed unsanitized.
	s.commitExchange(ctx, sess, input, raw)
	log.Info("chat reply generated")
	return raw, nil
}

// finishInterviewAnswer advances the question counter and, when the counter
// reaches the session's limit, finishes the interview and appends the
// extracted summary to the reply.
func (s *Service) finishInterviewAnswer(sess *domain.Session, reply string) string {
	sess.QuestionsAsked++
	if sess.QuestionsAsked < sess.MaxQuestions {
		return reply
	}

	sess.State = domain.StateFinished
	summary := ExtractSummary(reply)
	sess.SummaryPoints = append(sess.SummaryPoints, summary)
	return reply + "\n\n" + summaryHeading + "\n" + summary
}

// ─────────────────────────────────────────────
// Model invocation
// ─────────────────────────────────────────────

func (s *Service) buildPrompt(sess *domain.Session, fragmentKey, input, echo string) (string, error) {
	if !sess.JobDescriptionSet {
		return "", ErrNoJobDescription
	}

	system, err := s.fragments.Fragment(prompt.SystemFragment)
	if err != nil {
		return "", fmt.Errorf("resolve system instructions: %w", err)
	}
	if fragmentKey != "" {
		frag, err := s.fragments.Fragment(fragmentKey)
		if err != nil {
			return "", fmt.Errorf("resolve instruction fragment: %w", err)
		}
		system += "\n" + frag
	}

	return s.assembler.Build(prompt.Input{
		System:         system,
		JobDescription: sess.JobDescription,
		History:        sess.History,
		UserInput:      input,
		AssistantEcho:  echo,
	}), nil
}

func (s *Service) invokeModel(ctx context.Context, sess *domain.Session, fragmentKey, input string) (string, error) {
	p, err := s.buildPrompt(sess, fragmentKey, input, "")
	if err != nil {
		return "", err
	}

	text, err := s.model.Generate(ctx, p, tokenBudget(s.model.ContextWindow(), p))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendFailure, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrBackendFailure
	}
	return text, nil
}

func (s *Service) streamModelTurn(
	ctx context.Context,
	sess *domain.Session,
	fragmentKey, input string,
	interview, opening bool,
	emit func(string) error,
	log *slog.Logger,
) error {
	p, err := s.buildPrompt(sess, fragmentKey, input, "")
	if err != nil {
		return err
	}

	var accumulated strings.Builder
	streamErr := s.model.GenerateStream(ctx, p, tokenBudget(s.model.ContextWindow(), p), func(fragment string) error {
		accumulated.WriteString(fragment)
		return emit(fragment)
	})

	raw := strings.TrimSpace(accumulated.String())
	if raw == "" {
		if streamErr != nil {
			return fmt.Errorf("%w: %v", ErrBackendFailure, streamErr)
		}
		return ErrBackendFailure
	}

	if streamErr != nil {
		// Interrupted mid-stream: the partial text is still committed
		// below; the caller gets a fixed in-band marker. The emit may
		// itself fail when the client is gone, which is fine.
		log.Warn("stream interrupted, committing partial output", "error", streamErr)
		_ = emit("\n" + StreamErrorMarker)
	}

	reply := raw
	if interview {
		reply = Sanitize(raw)
		if opening {
			if reply == "" {
				reply = fallbackOpeningQuestion
				_ = emit(reply)
			}
			sess.State = domain.StateInProgress
			sess.QuestionsAsked = 1
			sess.SummaryPoints = nil
		} else {
			before := reply
			reply = s.finishInterviewAnswer(sess, reply)
			if tail := strings.TrimPrefix(reply, before); tail != "" && streamErr == nil {
				_ = emit(tail)
			}
		}
	}

	s.commitExchange(ctx, sess, input, reply)
	return nil
}

// ─────────────────────────────────────────────
// History bookkeeping
// ─────────────────────────────────────────────

// commitExchange appends the user and assistant turns as one unit and
// archives them best-effort. A completed exchange never leaves a user turn
// without its matching assistant turn.
func (s *Service) commitExchange(ctx context.Context, sess *domain.Session, userText, assistantText string) {
	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)
	userTurn := sess.Append(domain.SpeakerUser, userText)
	assistantTurn := sess.Append(domain.SpeakerAssistant, assistantText)
	s.archiveTurn(ctx, sess.ID, userTurn, log)
	s.archiveTurn(ctx, sess.ID, assistantTurn, log)
}

func (s *Service) archiveTurn(ctx context.Context, id domain.SessionID, turn domain.Turn, log *slog.Logger) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveTurn(context.WithoutCancel(ctx), id, turn); err != nil {
		log.Warn("archiving turn failed", "speaker", string(turn.Speaker), "error", err)
	}
}

// hydrate restores a freshly created session from the archive, if one is
// configured. Failures degrade to an empty session.
func (s *Service) hydrate(ctx context.Context, sess *domain.Session) {
	if s.archive == nil {
		return
	}

	turns, err := s.archive.History(ctx, sess.ID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("hydrating session failed",
			"session_id", sess.ID, "error", err)
		return
	}
	if len(turns) == 0 {
		return
	}

	sess.History = turns
	for _, t := range turns {
		if t.Speaker == domain.SpeakerSystem && strings.HasPrefix(t.Text, jobDescriptionNote) {
			sess.JobDescription = strings.TrimPrefix(t.Text, jobDescriptionNote)
			sess.JobDescriptionSet = true
		}
	}
}

func looksLikeJobDescription(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range jobKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
