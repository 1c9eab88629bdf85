package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mossline/ledgermind/internal/engine"
	"github.com/mossline/ledgermind/internal/feedback"
)

// Prompter implements engine.Prompter with an interactive terminal UI.
type Prompter struct {
	program *tea.Program
	results chan engine.Decision
}

// Ensure we implement the interface.
var _ engine.Prompter = (*Prompter)(nil)

// NewPrompter creates a TUI prompter. The optional metrics are rendered in
// the footer as the session progresses.
func NewPrompter(ctx context.Context, metrics *feedback.SessionMetrics) *Prompter {
	results := make(chan engine.Decision, 1)
	p := &Prompter{results: results}
	p.program = tea.NewProgram(
		newModel(results, metrics),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	return p
}

// Start runs the TUI event loop. It blocks until the user quits, so callers
// run it on its own goroutine alongside the review engine.
func (p *Prompter) Start() error {
	if _, err := p.program.Run(); err != nil {
		return fmt.Errorf("failed to run review UI: %w", err)
	}
	return nil
}

// Quit asks the event loop to shut down.
func (p *Prompter) Quit() {
	p.program.Quit()
}

// Review implements engine.Prompter.
func (p *Prompter) Review(ctx context.Context, prompt engine.Prompt) (engine.Decision, error) {
	p.program.Send(reviewRequestMsg{prompt: prompt})

	select {
	case decision := <-p.results:
		return decision, nil
	case <-ctx.Done():
		return engine.Decision{}, ctx.Err()
	}
}
