package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mossline/ledgermind/internal/engine"
	"github.com/mossline/ledgermind/internal/feedback"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/suggest"
)

// reviewRequestMsg delivers the next transaction to review.
type reviewRequestMsg struct {
	prompt engine.Prompt
}

// fieldState tracks one suggestion panel.
type fieldState struct {
	gate      suggest.ExpandGate
	selection *engine.Selection
	cursor    int
	expanded  bool
}

// Model is the bubbletea model for the review screen.
type Model struct {
	results  chan<- engine.Decision
	metrics  *feedback.SessionMetrics
	prompt   engine.Prompt
	input    textinput.Model
	keymap   KeyMap
	payee    fieldState
	category fieldState
	focus    model.FieldType
	width    int
	height   int
	entering bool
	active   bool
	quitting bool
}

// newModel creates a review model that reports decisions on results.
func newModel(results chan<- engine.Decision, metrics *feedback.SessionMetrics) Model {
	input := textinput.New()
	input.Placeholder = "type a name"
	input.CharLimit = 120

	return Model{
		results: results,
		metrics: metrics,
		input:   input,
		keymap:  DefaultKeyMap(),
		focus:   model.FieldPayee,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reviewRequestMsg:
		return m.startReview(msg.prompt), nil

	case tea.KeyMsg:
		if m.entering {
			return m.updateEntry(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

// startReview resets all per-transaction state for a new prompt.
func (m Model) startReview(prompt engine.Prompt) Model {
	m.prompt = prompt
	m.active = true
	m.entering = false
	m.payee = fieldState{}
	m.category = fieldState{}

	// Each transaction gets fresh gates. The engine's flags decide the
	// initial expansion; the gates stop refresh-driven re-fires after that.
	m.payee.expanded = prompt.AutoExpandPayee
	m.category.expanded = prompt.AutoExpandCategory
	m.payee.gate.Evaluate(m.fieldEmpty(model.FieldPayee), prompt.Transaction.Description, prompt.Payees)
	m.category.gate.Evaluate(m.fieldEmpty(model.FieldCategory), prompt.Transaction.Description, prompt.Categories)

	switch {
	case prompt.Transaction.NeedsPayee():
		m.focus = model.FieldPayee
	case prompt.Transaction.NeedsCategory():
		m.focus = model.FieldCategory
	}
	return m
}

// updateKeys handles navigation and selection keys.
func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		if m.active {
			m.emit(engine.Decision{Quit: true})
		}
		return m, tea.Quit

	case !m.active:
		return m, nil

	case key.Matches(msg, m.keymap.Skip):
		m.emit(engine.Decision{Skip: true})
		return m, nil

	case key.Matches(msg, m.keymap.Switch):
		if m.focus == model.FieldPayee {
			m.focus = model.FieldCategory
		} else {
			m.focus = model.FieldPayee
		}
		return m, nil

	case key.Matches(msg, m.keymap.Expand):
		field := m.focused()
		field.expanded = !field.expanded
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		field := m.focused()
		if field.expanded && field.cursor > 0 {
			field.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		field := m.focused()
		if field.expanded && field.cursor < len(m.suggestions(m.focus))-1 {
			field.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keymap.Accept):
		return m.acceptFocused(), nil

	case key.Matches(msg, m.keymap.Manual):
		m.entering = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Confirm):
		m.emitSelections()
		return m, nil
	}

	return m, nil
}

// updateEntry handles keys while the manual text input is open.
func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.input.Value()
		m.entering = false
		m.input.Blur()
		if name != "" {
			m.select_(m.focus, &engine.Selection{Name: name})
		}
		return m, nil
	case "esc":
		m.entering = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// acceptFocused selects the suggestion under the cursor.
func (m Model) acceptFocused() Model {
	field := m.focused()
	suggestions := m.suggestions(m.focus)
	if !field.expanded || field.cursor >= len(suggestions) {
		return m
	}

	chosen := suggestions[field.cursor]
	m.select_(m.focus, &engine.Selection{SuggestionID: chosen.ID, Name: chosen.Name})
	return m
}

// select_ records a selection, collapses the panel and advances focus. When
// every needed field has a value the decision goes out immediately.
func (m *Model) select_(fieldType model.FieldType, selection *engine.Selection) {
	field := m.fieldFor(fieldType)
	field.selection = selection
	field.expanded = false

	// Re-run the gates with the new field states. Value-identical inputs
	// never re-fire, so a panel the user collapsed stays collapsed.
	if m.payee.gate.Evaluate(m.fieldEmpty(model.FieldPayee), m.prompt.Transaction.Description, m.prompt.Payees) {
		m.payee.expanded = true
	}
	if m.category.gate.Evaluate(m.fieldEmpty(model.FieldCategory), m.prompt.Transaction.Description, m.prompt.Categories) {
		m.category.expanded = true
	}

	if m.fieldEmpty(model.FieldPayee) {
		m.focus = model.FieldPayee
	} else if m.fieldEmpty(model.FieldCategory) {
		m.focus = model.FieldCategory
	}

	if !m.fieldEmpty(model.FieldPayee) && !m.fieldEmpty(model.FieldCategory) {
		m.emitSelections()
	}
}

// emitSelections sends whatever has been selected; nothing selected means skip.
func (m *Model) emitSelections() {
	decision := engine.Decision{
		Payee:    m.payee.selection,
		Category: m.category.selection,
	}
	if decision.Payee == nil && decision.Category == nil {
		decision.Skip = true
	}
	m.emit(decision)
}

func (m *Model) emit(decision engine.Decision) {
	if !m.active {
		return
	}
	m.active = false
	m.results <- decision
}

// fieldEmpty reports whether a field still needs a value in this session.
func (m Model) fieldEmpty(fieldType model.FieldType) bool {
	if fieldType == model.FieldPayee {
		return m.prompt.Transaction.NeedsPayee() && m.payee.selection == nil
	}
	return m.prompt.Transaction.NeedsCategory() && m.category.selection == nil
}

func (m *Model) focused() *fieldState {
	return m.fieldFor(m.focus)
}

func (m *Model) fieldFor(fieldType model.FieldType) *fieldState {
	if fieldType == model.FieldPayee {
		return &m.payee
	}
	return &m.category
}

func (m Model) suggestions(fieldType model.FieldType) model.Suggestions {
	if fieldType == model.FieldPayee {
		return m.prompt.Payees
	}
	return m.prompt.Categories
}
