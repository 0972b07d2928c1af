package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobcoach/coach-api/internal/adapters/llm"
	"github.com/jobcoach/coach-api/internal/adapters/storage/memory"
	"github.com/jobcoach/coach-api/internal/app/coaching"
	"github.com/jobcoach/coach-api/internal/app/prompt"
)

func newTestHandler(t *testing.T, mock *llm.Mock) http.Handler {
	t.Helper()
	svc := coaching.NewService(
		mock,
		prompt.NewStore(""),
		prompt.NewAssembler(0),
		memory.NewArchive(),
		nil,
		5,
	)
	return NewServer(svc)
}

func seedJobDescription(t *testing.T, handler http.Handler, sessionID string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/chat?session_id="+sessionID+"&user_input=We+are+looking+for+a+Go+engineer.", nil)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seeding job description: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
	return body.Response
}

func TestChatRoundtrip(t *testing.T) {
	mock := llm.NewMock("A thoughtful coaching reply.")
	handler := newTestHandler(t, mock)

	seedJobDescription(t, handler, "s-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat?session_id=s-1&user_input=any+advice%3F", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeResponse(t, rec); got != "A thoughtful coaching reply." {
		t.Fatalf("response = %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("X-Request-Id header missing")
	}
}

func TestChatRejectsEmptyInput(t *testing.T) {
	handler := newTestHandler(t, llm.NewMock())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat?session_id=s-1&user_input=+++", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User input cannot be empty.") {
		t.Fatalf("body %q lacks the fixed error text", rec.Body.String())
	}
}

func TestChatRequiresSessionID(t *testing.T) {
	handler := newTestHandler(t, llm.NewMock())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat?user_input=hello", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestChatRejectsWrongMethod(t *testing.T) {
	handler := newTestHandler(t, llm.NewMock())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat?session_id=s-1&user_input=hi", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", rec.Code)
	}
}

func TestChatMapsBackendFailure(t *testing.T) {
	mock := llm.NewMock()
	handler := newTestHandler(t, mock)

	seedJobDescription(t, handler, "s-1")
	mock.Err = errors.New("backend down")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat?session_id=s-1&user_input=hello", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "The model did not return a valid response.") {
		t.Fatalf("body %q lacks the fixed error text", rec.Body.String())
	}
}

func TestChatStreamDeliversChunks(t *testing.T) {
	mock := llm.NewMock("streamed words arrive here")
	handler := newTestHandler(t, mock)

	seedJobDescription(t, handler, "s-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/stream",
		strings.NewReader(`{"sessionId":"s-1","userInput":"hello"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "streamed words arrive here" {
		t.Fatalf("streamed body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestChatStreamRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(t, llm.NewMock())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader("not json"))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t, llm.NewMock())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}
