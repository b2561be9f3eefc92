package filter

import (
	"reflect"
	"testing"
	"time"

	"codeberg.org/snonux/ordertrans/internal/fields"
)

var header = []string{"审核日期", "订单编号", "是否需要电核", "审核详情", "需要电核的内容", "信审审核意见"}

func cutoffDay() time.Time {
	return time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
}

func TestApply(t *testing.T) {
	res := fields.Resolve(header)
	rows := [][]string{
		{"2025/07/01", "ORD1", "是", "详情A", "内容A", "意见A"},
		{"2025/06/19", "ORD2", "否", "详情B", "", ""},
		{"2025-06-20", "ORD3", "否", "详情C", "", "意见C"},
		{"not a date", "ORD4", "否", "", "", ""},
		{"2025/07/02", "ORD5"},
		{"06/25/2025", "ORD6", "否", "", "", ""},
	}

	orders, skips := Apply(rows, res, cutoffDay())

	var gotIDs []string
	for _, o := range orders {
		gotIDs = append(gotIDs, o.OrderID)
	}
	wantIDs := []string{"ORD1", "ORD3", "ORD6"}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("Filtered order IDs = %v, want %v", gotIDs, wantIDs)
	}

	wantSkips := []Skip{
		{Row: 3, Reason: BeforeCutoff, Value: "2025/06/19"},
		{Row: 5, Reason: BadDate, Value: "not a date"},
		{Row: 6, Reason: Malformed},
	}
	if !reflect.DeepEqual(skips, wantSkips) {
		t.Errorf("Skips = %+v, want %+v", skips, wantSkips)
	}

	if orders[0].Row != 2 || !orders[0].NeedCall || orders[0].CallContent != "内容A" {
		t.Errorf("Unexpected first order: %+v", orders[0])
	}
	if !orders[0].Date.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected parsed date on order, got %v", orders[0].Date)
	}
}

func TestApply_EachPassingRowExactlyOnce(t *testing.T) {
	res := fields.Resolve(header)
	rows := [][]string{
		{"2025/07/01", "A", "", "", "", ""},
		{"2025/07/01", "A", "", "", "", ""},
	}

	orders, _ := Apply(rows, res, cutoffDay())
	if len(orders) != 2 {
		t.Fatalf("Expected identical rows to pass independently, got %d", len(orders))
	}
	if orders[0].Row != 2 || orders[1].Row != 3 {
		t.Errorf("Row numbers = %d, %d", orders[0].Row, orders[1].Row)
	}
}

func TestApply_DoesNotMutateRows(t *testing.T) {
	res := fields.Resolve(header)
	rows := [][]string{{" 2025/07/01 ", "ORD1", "是", "d", "c", "a"}}
	snapshot := [][]string{{" 2025/07/01 ", "ORD1", "是", "d", "c", "a"}}

	Apply(rows, res, cutoffDay())

	if !reflect.DeepEqual(rows, snapshot) {
		t.Errorf("Apply mutated input rows: %v", rows)
	}
}

func TestApply_Empty(t *testing.T) {
	orders, skips := Apply(nil, fields.Resolve(header), cutoffDay())
	if len(orders) != 0 || len(skips) != 0 {
		t.Errorf("Expected nothing for no rows, got %v %v", orders, skips)
	}
}
