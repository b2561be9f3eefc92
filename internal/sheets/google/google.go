// Package google implements the spreadsheet contract on the Google Sheets v4 API.
package google

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"codeberg.org/snonux/ordertrans/internal/sheets"
)

var spreadsheetURLRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the id from a spreadsheet URL. A bare id is returned
// unchanged.
func SpreadsheetID(urlOrID string) (string, error) {
	urlOrID = strings.TrimSpace(urlOrID)
	if m := spreadsheetURLRe.FindStringSubmatch(urlOrID); m != nil {
		return m[1], nil
	}
	if urlOrID == "" || strings.ContainsAny(urlOrID, "/:?") {
		return "", fmt.Errorf("not a spreadsheet URL or id: %q", urlOrID)
	}
	return urlOrID, nil
}

// Spreadsheet is one Google spreadsheet document.
type Spreadsheet struct {
	svc *sheetsapi.Service
	id  string
}

// New connects with service account credentials in JSON form.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte, opts ...option.ClientOption) (*Spreadsheet, error) {
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Spreadsheet{svc: svc, id: spreadsheetID}, nil
}

// Worksheet looks up a tab by title.
func (s *Spreadsheet) Worksheet(ctx context.Context, title string) (sheets.Worksheet, error) {
	doc, err := s.svc.Spreadsheets.Get(s.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet %s: %w", s.id, err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return &worksheet{s: s, sheetID: sh.Properties.SheetId, title: title}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", sheets.ErrWorksheetNotFound, title)
}

// AddWorksheet creates a tab with the given grid size.
func (s *Spreadsheet) AddWorksheet(ctx context.Context, title string, rows, cols int) (sheets.Worksheet, error) {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	resp, err := s.svc.Spreadsheets.BatchUpdate(s.id, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return nil, fmt.Errorf("add worksheet %s: empty reply", title)
	}
	return &worksheet{s: s, sheetID: resp.Replies[0].AddSheet.Properties.SheetId, title: title}, nil
}

type worksheet struct {
	s       *Spreadsheet
	sheetID int64
	title   string
}

func (w *worksheet) Title() string {
	return w.title
}

func (w *worksheet) a1(rng string) string {
	quoted := "'" + strings.ReplaceAll(w.title, "'", "''") + "'"
	if rng == "" {
		return quoted
	}
	return quoted + "!" + rng
}

// Values reads every row. The API drops trailing empty cells, so rows are
// padded back to a common width.
func (w *worksheet) Values(ctx context.Context) ([][]string, error) {
	resp, err := w.s.svc.Spreadsheets.Values.Get(w.s.id, w.a1("")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", w.title, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return sheets.Pad(rows), nil
}

func (w *worksheet) Update(ctx context.Context, rng sheets.Range, rows [][]string) error {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		values = append(values, cells)
	}
	_, err := w.s.svc.Spreadsheets.Values.Update(w.s.id, w.a1(rng.A1()), &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s!%s: %w", w.title, rng.A1(), err)
	}
	return nil
}

func (w *worksheet) Clear(ctx context.Context) error {
	_, err := w.s.svc.Spreadsheets.Values.Clear(w.s.id, w.a1(""), &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", w.title, err)
	}
	return nil
}

func (w *worksheet) Format(ctx context.Context, rng sheets.Range, f sheets.Format) error {
	format := &sheetsapi.CellFormat{}
	var fields []string
	if f.Bold {
		format.TextFormat = &sheetsapi.TextFormat{Bold: true}
		fields = append(fields, "userEnteredFormat.textFormat.bold")
	}
	if f.Wrap {
		format.WrapStrategy = "WRAP"
		fields = append(fields, "userEnteredFormat.wrapStrategy")
	}
	if len(fields) == 0 {
		return nil
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range:  w.gridRange(rng),
				Cell:   &sheetsapi.CellData{UserEnteredFormat: format},
				Fields: strings.Join(fields, ","),
			},
		}},
	}
	if _, err := w.s.svc.Spreadsheets.BatchUpdate(w.s.id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to format %s!%s: %w", w.title, rng.A1(), err)
	}
	return nil
}

// gridRange converts a 1-based inclusive range to the API's 0-based half-open
// form. SheetId 0 is a valid id and has to be sent explicitly.
func (w *worksheet) gridRange(rng sheets.Range) *sheetsapi.GridRange {
	gr := &sheetsapi.GridRange{
		SheetId:          w.sheetID,
		StartColumnIndex: int64(rng.StartCol - 1),
		EndColumnIndex:   int64(rng.EndCol),
		ForceSendFields:  []string{"SheetId", "StartColumnIndex"},
	}
	if !rng.WholeColumns() {
		gr.StartRowIndex = int64(rng.StartRow - 1)
		gr.EndRowIndex = int64(rng.EndRow)
		gr.ForceSendFields = append(gr.ForceSendFields, "StartRowIndex")
	}
	return gr
}
