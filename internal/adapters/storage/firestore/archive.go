package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jobcoach/coach-api/internal/domain"
)

// Archive persists turns and job descriptions in Firestore, one session
// document with a turns subcollection.
type Archive struct {
	client *firestore.Client
}

func NewArchive(ctx context.Context, projectID string) (*Archive, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore archive")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Archive{client: client}, nil
}

func (a *Archive) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return a.client.Collection("sessions").Doc(string(id))
}

func (a *Archive) turnsCol(id domain.SessionID) *firestore.CollectionRef {
	return a.sessionDoc(id).Collection("turns")
}

type turnDoc struct {
	Speaker   string    `firestore:"speaker"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

type jobDescriptionDoc struct {
	Title     string    `firestore:"job_title"`
	Details   string    `firestore:"job_details"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (a *Archive) SaveTurn(ctx context.Context, sessionID domain.SessionID, turn domain.Turn) error {
	doc := turnDoc{
		Speaker:   string(turn.Speaker),
		Text:      turn.Text,
		CreatedAt: time.Now().UTC(),
	}

	if _, _, err := a.turnsCol(sessionID).Add(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveTurn: %w", err)
	}
	return nil
}

func (a *Archive) SaveJobDescription(ctx context.Context, sessionID domain.SessionID, title, text string) error {
	doc := jobDescriptionDoc{
		Title:     title,
		Details:   text,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := a.sessionDoc(sessionID).Set(ctx, map[string]interface{}{
		"job_description": doc,
	}, firestore.MergeAll); err != nil {
		return fmt.Errorf("firestore SaveJobDescription: %w", err)
	}
	return nil
}

func (a *Archive) History(ctx context.Context, sessionID domain.SessionID) ([]domain.Turn, error) {
	iter := a.turnsCol(sessionID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var turns []domain.Turn
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			if status.Code(err) == codes.NotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("firestore History: %w", err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode turnDoc: %w", err)
		}
		turns = append(turns, domain.Turn{Speaker: domain.Speaker(doc.Speaker), Text: doc.Text})
	}
	return turns, nil
}

// Close releases the Firestore client.
func (a *Archive) Close() error {
	return a.client.Close()
}
