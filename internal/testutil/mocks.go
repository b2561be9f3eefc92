package testutil

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/ordertrans/internal/sheets"
	"codeberg.org/snonux/ordertrans/internal/translation"
)

// MockSpreadsheet is an in-memory spreadsheet
type MockSpreadsheet struct {
	Sheets map[string]*MockWorksheet
	Calls  []string

	// WorksheetErr, when set, is returned by every Worksheet lookup
	WorksheetErr error
	// AddErr, when set, is returned by AddWorksheet
	AddErr error
}

// NewMockSpreadsheet creates an empty spreadsheet
func NewMockSpreadsheet() *MockSpreadsheet {
	return &MockSpreadsheet{Sheets: make(map[string]*MockWorksheet)}
}

// AddSheet adds a worksheet holding rows
func (m *MockSpreadsheet) AddSheet(title string, rows [][]string) *MockWorksheet {
	ws := &MockWorksheet{title: title, book: m, Formats: make(map[string]sheets.Format)}
	for _, row := range rows {
		ws.Cells = append(ws.Cells, append([]string(nil), row...))
	}
	m.Sheets[title] = ws
	return ws
}

// Worksheet mocks looking up a worksheet
func (m *MockSpreadsheet) Worksheet(ctx context.Context, title string) (sheets.Worksheet, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("WORKSHEET %s", title))

	if m.WorksheetErr != nil {
		return nil, m.WorksheetErr
	}
	if ws, ok := m.Sheets[title]; ok {
		return ws, nil
	}
	return nil, fmt.Errorf("%w: %s", sheets.ErrWorksheetNotFound, title)
}

// AddWorksheet mocks adding a worksheet
func (m *MockSpreadsheet) AddWorksheet(ctx context.Context, title string, rows, cols int) (sheets.Worksheet, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("ADD %s (%dx%d)", title, rows, cols))

	if m.AddErr != nil {
		return nil, m.AddErr
	}
	return m.AddSheet(title, nil), nil
}

// Writes counts calls that change values or formatting
func (m *MockSpreadsheet) Writes() int {
	n := 0
	for _, call := range m.Calls {
		if strings.HasPrefix(call, "UPDATE") || strings.HasPrefix(call, "CLEAR") ||
			strings.HasPrefix(call, "FORMAT") || strings.HasPrefix(call, "ADD") {
			n++
		}
	}
	return n
}

// MockWorksheet is an in-memory worksheet
type MockWorksheet struct {
	title   string
	book    *MockSpreadsheet
	Cells   [][]string
	Formats map[string]sheets.Format

	// FailUpdate, when set, is consulted before every Update
	FailUpdate func(call int, rng sheets.Range) error
	updates    int
}

// Title returns the worksheet title
func (w *MockWorksheet) Title() string {
	return w.title
}

func (w *MockWorksheet) record(call string) {
	if w.book != nil {
		w.book.Calls = append(w.book.Calls, call)
	}
}

// Values returns a padded copy of the cells
func (w *MockWorksheet) Values(ctx context.Context) ([][]string, error) {
	w.record(fmt.Sprintf("VALUES %s", w.title))

	rows := make([][]string, len(w.Cells))
	for i, row := range w.Cells {
		rows[i] = append([]string(nil), row...)
	}
	return sheets.Pad(rows), nil
}

// Update writes rows at the top-left corner of rng
func (w *MockWorksheet) Update(ctx context.Context, rng sheets.Range, rows [][]string) error {
	w.record(fmt.Sprintf("UPDATE %s!%s", w.title, rng.A1()))

	w.updates++
	if w.FailUpdate != nil {
		if err := w.FailUpdate(w.updates, rng); err != nil {
			return err
		}
	}

	for i, row := range rows {
		r := rng.StartRow - 1 + i
		for len(w.Cells) <= r {
			w.Cells = append(w.Cells, nil)
		}
		for j, v := range row {
			c := rng.StartCol - 1 + j
			for len(w.Cells[r]) <= c {
				w.Cells[r] = append(w.Cells[r], "")
			}
			w.Cells[r][c] = v
		}
	}
	return nil
}

// Clear removes every value
func (w *MockWorksheet) Clear(ctx context.Context) error {
	w.record(fmt.Sprintf("CLEAR %s", w.title))
	w.Cells = nil
	return nil
}

// Format records the directive under the A1 range
func (w *MockWorksheet) Format(ctx context.Context, rng sheets.Range, f sheets.Format) error {
	w.record(fmt.Sprintf("FORMAT %s!%s", w.title, rng.A1()))
	w.Formats[rng.A1()] = f
	return nil
}

// MockBackend mocks a translation backend
type MockBackend struct {
	Translations map[string]string
	Errors       map[string]error
	Tokens       int
	Calls        []string

	// Identity returns the source text unchanged when no translation is set
	Identity bool
}

// Complete mocks a text generation call. The source text is the last
// paragraph of the prompt.
func (m *MockBackend) Complete(ctx context.Context, prompt string, maxTokens int) (translation.Completion, error) {
	text := prompt
	if i := strings.LastIndex(prompt, "\n\n"); i >= 0 {
		text = prompt[i+2:]
	}
	m.Calls = append(m.Calls, text)

	if err, ok := m.Errors[text]; ok {
		return translation.Completion{}, err
	}

	if translated, ok := m.Translations[text]; ok {
		return translation.Completion{Text: translated, Tokens: m.Tokens}, nil
	}

	if m.Identity {
		return translation.Completion{Text: text, Tokens: m.Tokens}, nil
	}

	// Default mock translation
	return translation.Completion{Text: fmt.Sprintf("mock translation of %s", text), Tokens: m.Tokens}, nil
}

// Name returns the provider name
func (m *MockBackend) Name() string {
	return "mock"
}
