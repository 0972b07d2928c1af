package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mock is a scriptable in-process model backend for local development and
// tests. Responses are served in order and the last one repeats; Err, when
// set, fails every invocation.
type Mock struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Window    int

	next int

	// Prompts records every prompt received, for assertions.
	Prompts []string
}

func NewMock(responses ...string) *Mock {
	return &Mock{Responses: responses, Window: 4096}
}

func (m *Mock) ContextWindow() int {
	if m.Window <= 0 {
		return 4096
	}
	return m.Window
}

func (m *Mock) Generate(_ context.Context, prompt string, _ int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.nextResponse(prompt), nil
}

func (m *Mock) GenerateStream(_ context.Context, prompt string, _ int, emit func(string) error) error {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	err := m.Err
	var response string
	if err == nil {
		response = m.nextResponse(prompt)
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}

	for _, word := range strings.SplitAfter(response, " ") {
		if err := emit(word); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mock) nextResponse(prompt string) string {
	if len(m.Responses) == 0 {
		return fmt.Sprintf("I hear you. You said %d words; tell me more.", len(strings.Fields(prompt)))
	}

	response := m.Responses[m.next]
	if m.next < len(m.Responses)-1 {
		m.next++
	}
	return response
}
