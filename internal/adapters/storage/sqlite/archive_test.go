package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jobcoach/coach-api/internal/domain"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := NewArchive(filepath.Join(t.TempDir(), "coach.db"))
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveTurnRoundtrip(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	id := domain.SessionID("s-1")

	turns := []domain.Turn{
		{Speaker: domain.SpeakerUser, Text: "hello"},
		{Speaker: domain.SpeakerAssistant, Text: "paste the posting"},
		{Speaker: domain.SpeakerSystem, Text: "User provided Job Description: go dev"},
	}
	for _, turn := range turns {
		if err := a.SaveTurn(ctx, id, turn); err != nil {
			t.Fatalf("SaveTurn failed: %v", err)
		}
	}

	got, err := a.History(ctx, id)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("got %d turns, want %d", len(got), len(turns))
	}
	for i := range turns {
		if got[i] != turns[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, got[i], turns[i])
		}
	}
}

func TestArchiveHistoryIsolatesSessions(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	if err := a.SaveTurn(ctx, "s-a", domain.Turn{Speaker: domain.SpeakerUser, Text: "from a"}); err != nil {
		t.Fatal(err)
	}
	if err := a.SaveTurn(ctx, "s-b", domain.Turn{Speaker: domain.SpeakerUser, Text: "from b"}); err != nil {
		t.Fatal(err)
	}

	got, err := a.History(ctx, "s-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text != "from a" {
		t.Fatalf("session isolation broken: %+v", got)
	}
}

func TestArchiveHistoryEmptyForUnknownSession(t *testing.T) {
	a := newTestArchive(t)

	got, err := a.History(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %+v", got)
	}
}

func TestArchiveJobDescriptionUpsert(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	id := domain.SessionID("s-1")

	if err := a.SaveJobDescription(ctx, id, "Go Engineer", "first version"); err != nil {
		t.Fatalf("SaveJobDescription failed: %v", err)
	}
	if err := a.SaveJobDescription(ctx, id, "Go Engineer", "second version"); err != nil {
		t.Fatalf("second SaveJobDescription failed: %v", err)
	}

	var title, details string
	err := a.db.QueryRowContext(ctx,
		"SELECT job_title, job_details FROM job_descriptions WHERE session_id = ?",
		string(id)).Scan(&title, &details)
	if err != nil {
		t.Fatalf("reading job description back: %v", err)
	}
	if details != "second version" {
		t.Fatalf("upsert did not replace: %q", details)
	}

	var count int
	if err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM job_descriptions WHERE session_id = ?",
		string(id)).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected one row per session, got %d", count)
	}
}
