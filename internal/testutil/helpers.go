package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ReviewHeader is the header row of the review sheet
var ReviewHeader = []string{"审核日期", "订单编号", "是否需要电核", "审核详情", "需要电核的内容", "信审审核意见"}

// ReviewRow builds a source row in ReviewHeader order
func ReviewRow(date, orderID, needCall, details, callContent, advice string) []string {
	return []string{date, orderID, needCall, details, callContent, advice}
}

// NewSourceSpreadsheet creates a spreadsheet with a populated source sheet
func NewSourceSpreadsheet(t *testing.T, title string, rows ...[]string) *MockSpreadsheet {
	t.Helper()

	book := NewMockSpreadsheet()
	book.AddSheet(title, append([][]string{ReviewHeader}, rows...))
	return book
}

// CreateTestWorkbook writes an .xlsx file with one sheet per entry and
// returns its path
func CreateTestWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders.xlsx")
	wb := excelize.NewFile()
	defer wb.Close()

	for name, rows := range sheets {
		if _, err := wb.NewSheet(name); err != nil {
			t.Fatalf("NewSheet %s failed: %v", name, err)
		}
		for i, row := range rows {
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := wb.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow %s failed: %v", name, err)
			}
		}
	}

	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test workbook: %v", err)
	}
	return path
}

// AssertRows fails the test when the worksheet does not hold want
func AssertRows(t *testing.T, ws interface {
	Values(ctx context.Context) ([][]string, error)
}, want [][]string) {
	t.Helper()

	got, err := ws.Values(context.Background())
	if err != nil {
		t.Fatalf("Failed to read worksheet: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Row count = %d, want %d\nrows: %v", len(got), len(want), got)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Errorf("Row %d = %q, want %q", i+1, got[i], want[i])
			continue
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("Row %d = %q, want %q", i+1, got[i], want[i])
				break
			}
		}
	}
}
