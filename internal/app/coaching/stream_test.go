package coaching_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jobcoach/coach-api/internal/app/coaching"
	"github.com/jobcoach/coach-api/internal/domain"
)

func collectStream(t *testing.T, svc *coaching.Service, id domain.SessionID, input string) (string, error) {
	t.Helper()
	var b strings.Builder
	err := svc.HandleTurnStream(context.Background(), id, input, func(fragment string) error {
		b.WriteString(fragment)
		return nil
	})
	return b.String(), err
}

func TestStreamPlainChatCommitsAccumulatedText(t *testing.T) {
	model := &stubModel{
		responses:       []string{"seed"},
		streamFragments: []string{"Practice ", "system ", "design."},
	}
	svc := newTestService(t, model, 5)
	seedJobDescription(t, svc, "a")

	out, err := collectStream(t, svc, "a", "how do I prepare?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Practice system design." {
		t.Fatalf("unexpected streamed output: %q", out)
	}

	sess, _ := svc.Snapshot("a")
	last := sess.History[len(sess.History)-1]
	if last.Speaker != domain.SpeakerAssistant || last.Text != "Practice system design." {
		t.Fatalf("unexpected committed turn: %+v", last)
	}
}

func TestStreamInterruptionCommitsPartialText(t *testing.T) {
	model := &stubModel{
		streamFragments: []string{"Half an ", "answer"},
		streamErr:       errors.New("connection reset"),
	}
	svc := newTestService(t, model, 5)
	seedJobDescription(t, svc, "a")

	out, err := collectStream(t, svc, "a", "keep going")
	if err != nil {
		t.Fatalf("interruption after partial output must not fail the exchange: %v", err)
	}
	if !strings.Contains(out, coaching.StreamErrorMarker) {
		t.Fatalf("expected in-band error marker, got %q", out)
	}

	sess, _ := svc.Snapshot("a")
	last := sess.History[len(sess.History)-1]
	if last.Speaker != domain.SpeakerAssistant || last.Text != "Half an answer" {
		t.Fatalf("partial text not committed: %+v", last)
	}
	if secondToLast := sess.History[len(sess.History)-2]; secondToLast.Speaker != domain.SpeakerUser {
		t.Fatalf("user turn missing before assistant turn: %+v", secondToLast)
	}
}

func TestStreamFailureBeforeAnyOutputAppendsNothing(t *testing.T) {
	model := &stubModel{streamErr: errors.New("unavailable")}
	svc := newTestService(t, model, 5)
	seedJobDescription(t, svc, "a")

	before, _ := svc.Snapshot("a")

	_, err := collectStream(t, svc, "a", "hello?")
	if !errors.Is(err, coaching.ErrBackendFailure) {
		t.Fatalf("expected backend failure, got %v", err)
	}

	after, _ := svc.Snapshot("a")
	if len(after.History) != len(before.History) {
		t.Fatalf("failed stream must not append turns: %d -> %d", len(before.History), len(after.History))
	}
}

func TestStreamInterviewStartCountsQuestion(t *testing.T) {
	model := &stubModel{streamFragments: []string{"Why do ", "you want this role?"}}
	svc := newTestService(t, model, 5)
	seedJobDescription(t, svc, "a")

	out, err := collectStream(t, svc, "a", "/interview")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("expected a streamed opening question")
	}

	sess, _ := svc.Snapshot("a")
	if sess.State != domain.StateInProgress || sess.QuestionsAsked != 1 {
		t.Fatalf("unexpected state after streamed interview start: %+v", sess)
	}
}

func TestStreamFinalInterviewAnswerEmitsSummaryTail(t *testing.T) {
	model := &stubModel{
		responses:       []string{"Opening question?"},
		streamFragments: []string{"Well done.\n", "- crisp answers\n", "- knows Go"},
	}
	svc := newTestService(t, model, 2)
	seedJobDescription(t, svc, "a")
	mustTurn(t, svc, "a", "/interview")

	out, err := collectStream(t, svc, "a", "my final answer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Here is your interview summary:") {
		t.Fatalf("expected summary tail in stream, got %q", out)
	}

	sess, _ := svc.Snapshot("a")
	if sess.State != domain.StateFinished || len(sess.SummaryPoints) != 1 {
		t.Fatalf("unexpected state after streamed final answer: %+v", sess)
	}
}

func TestStreamQuitEmitsFixedMessage(t *testing.T) {
	model := &stubModel{responses: []string{"Q?"}}
	svc := newTestService(t, model, 5)
	seedJobDescription(t, svc, "a")
	mustTurn(t, svc, "a", "/interview")

	out, err := collectStream(t, svc, "a", "/q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "You have exited all modes") {
		t.Fatalf("unexpected quit stream: %q", out)
	}

	sess, _ := svc.Snapshot("a")
	if sess.QuestionsAsked != 0 || sess.State != domain.StateIdle {
		t.Fatalf("quit over the stream path must reset interview fields: %+v", sess)
	}
}
