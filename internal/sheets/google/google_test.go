package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"codeberg.org/snonux/ordertrans/internal/sheets"
)

func TestSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"full url", "https://docs.google.com/spreadsheets/d/1g_xoXrBy8MnG_76nrRAT9eNaMytE5YrCYBUK3q5AE04", "1g_xoXrBy8MnG_76nrRAT9eNaMytE5YrCYBUK3q5AE04", false},
		{"url with fragment", "https://docs.google.com/spreadsheets/d/abc-123/edit#gid=0", "abc-123", false},
		{"bare id", "abc-123", "abc-123", false},
		{"empty", "", "", true},
		{"other url", "https://example.com/x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpreadsheetID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SpreadsheetID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SpreadsheetID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type recorded struct {
	method string
	path   string
	body   string
}

func newTestSpreadsheet(t *testing.T, handler func(r *http.Request, body string) string) (*Spreadsheet, *[]recorded) {
	t.Helper()

	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(data)})
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, handler(r, string(data)))
	}))
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), "sheet-id", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, &calls
}

const spreadsheetDoc = `{"sheets":[
	{"properties":{"sheetId":0,"title":"支援审核订单详情"}},
	{"properties":{"sheetId":42,"title":"电核订单英文翻译"}}]}`

func TestWorksheet_Lookup(t *testing.T) {
	s, _ := newTestSpreadsheet(t, func(r *http.Request, body string) string {
		return spreadsheetDoc
	})

	ws, err := s.Worksheet(context.Background(), "电核订单英文翻译")
	if err != nil {
		t.Fatalf("Worksheet failed: %v", err)
	}
	if ws.Title() != "电核订单英文翻译" || ws.(*worksheet).sheetID != 42 {
		t.Errorf("Unexpected worksheet %+v", ws)
	}

	_, err = s.Worksheet(context.Background(), "missing")
	if !errors.Is(err, sheets.ErrWorksheetNotFound) {
		t.Errorf("Expected ErrWorksheetNotFound, got %v", err)
	}
}

func TestWorksheet_ValuesPadsRows(t *testing.T) {
	s, calls := newTestSpreadsheet(t, func(r *http.Request, body string) string {
		if strings.Contains(r.URL.Path, "/values/") {
			return `{"range":"x","majorDimension":"ROWS","values":[["a","b","c"],["d"],["e","f"]]}`
		}
		return spreadsheetDoc
	})

	ws, err := s.Worksheet(context.Background(), "支援审核订单详情")
	if err != nil {
		t.Fatalf("Worksheet failed: %v", err)
	}
	got, err := ws.Values(context.Background())
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}

	want := [][]string{{"a", "b", "c"}, {"d", "", ""}, {"e", "f", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}

	last := (*calls)[len(*calls)-1]
	if !strings.HasSuffix(last.path, "/values/'支援审核订单详情'") {
		t.Errorf("Values read path = %q", last.path)
	}
}

func TestWorksheet_UpdateAndFormat(t *testing.T) {
	s, calls := newTestSpreadsheet(t, func(r *http.Request, body string) string {
		switch {
		case strings.Contains(r.URL.Path, "/values/"):
			return `{}`
		case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
			return `{"spreadsheetId":"sheet-id","replies":[{}]}`
		}
		return spreadsheetDoc
	})

	ws, err := s.Worksheet(context.Background(), "支援审核订单详情")
	if err != nil {
		t.Fatalf("Worksheet failed: %v", err)
	}

	if err := ws.Update(context.Background(), sheets.Rows(2, 3, 5), [][]string{{"a"}, {"b"}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	update := (*calls)[len(*calls)-1]
	if update.method != http.MethodPut || !strings.HasSuffix(update.path, "!A2:E3") {
		t.Errorf("Update request = %s %s", update.method, update.path)
	}
	if !strings.Contains(update.body, `"values":[["a"],["b"]]`) {
		t.Errorf("Update body = %s", update.body)
	}

	if err := ws.Format(context.Background(), sheets.Column(4), sheets.Format{Wrap: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	format := (*calls)[len(*calls)-1]
	var req struct {
		Requests []struct {
			RepeatCell struct {
				Range  map[string]int64 `json:"range"`
				Fields string           `json:"fields"`
			} `json:"repeatCell"`
		} `json:"requests"`
	}
	if err := json.Unmarshal([]byte(format.body), &req); err != nil {
		t.Fatalf("Failed to decode format request: %v", err)
	}
	rc := req.Requests[0].RepeatCell
	if rc.Fields != "userEnteredFormat.wrapStrategy" {
		t.Errorf("Fields = %q", rc.Fields)
	}
	if _, ok := rc.Range["sheetId"]; !ok {
		t.Error("sheetId 0 must be sent explicitly")
	}
	if rc.Range["startColumnIndex"] != 3 || rc.Range["endColumnIndex"] != 4 {
		t.Errorf("Range = %v", rc.Range)
	}
	if _, ok := rc.Range["startRowIndex"]; ok {
		t.Error("Whole column range must not set row bounds")
	}
}

func TestAddWorksheet(t *testing.T) {
	s, calls := newTestSpreadsheet(t, func(r *http.Request, body string) string {
		return `{"spreadsheetId":"sheet-id","replies":[{"addSheet":{"properties":{"sheetId":7,"title":"new"}}}]}`
	})

	ws, err := s.AddWorksheet(context.Background(), "new", 21, 5)
	if err != nil {
		t.Fatalf("AddWorksheet failed: %v", err)
	}
	if ws.(*worksheet).sheetID != 7 {
		t.Errorf("sheetID = %d, want 7", ws.(*worksheet).sheetID)
	}
	body := (*calls)[0].body
	if !strings.Contains(body, `"rowCount":21`) || !strings.Contains(body, `"columnCount":5`) {
		t.Errorf("AddSheet body = %s", body)
	}
}
