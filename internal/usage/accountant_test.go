package usage

import (
	"errors"
	"math"
	"testing"
)

func TestAccountant_Counters(t *testing.T) {
	a := NewAccountant(Limits{CostPer1KTokens: 0.002, MonthlyBudget: 100, MaxDailyOrders: 500})

	a.AddTokens(1500)
	a.AddTokens(500)
	a.AddTokens(0)
	a.AddTokens(-10)
	a.AddOrder()
	a.AddOrder()

	snap := a.Snapshot()
	if snap.TokensUsed != 2000 {
		t.Errorf("TokensUsed = %d, want 2000", snap.TokensUsed)
	}
	if snap.OrdersProcessed != 2 {
		t.Errorf("OrdersProcessed = %d, want 2", snap.OrdersProcessed)
	}
	if math.Abs(snap.EstimatedCost-0.004) > 1e-12 {
		t.Errorf("EstimatedCost = %v, want 0.004", snap.EstimatedCost)
	}
	if snap.MonthlyBudget != 100 || snap.MaxDailyOrders != 500 {
		t.Errorf("Snapshot limits = %+v", snap)
	}
}

func TestAccountant_CheckOrderCap(t *testing.T) {
	a := NewAccountant(Limits{MaxDailyOrders: 3})

	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, false},
		{2, false},
		{3, false},
		{4, true},
	}

	for _, tt := range tests {
		err := a.CheckOrderCap(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckOrderCap(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrDailyCapExceeded) {
			t.Errorf("CheckOrderCap(%d) error = %v, want ErrDailyCapExceeded", tt.n, err)
		}
	}

	zero := NewAccountant(Limits{})
	if err := zero.CheckOrderCap(0); err != nil {
		t.Errorf("Zero cap with no orders should pass, got %v", err)
	}
	if err := zero.CheckOrderCap(1); !errors.Is(err, ErrDailyCapExceeded) {
		t.Errorf("Zero cap with one order: error = %v, want ErrDailyCapExceeded", err)
	}
}

func TestAccountant_BudgetAdvisories(t *testing.T) {
	a := NewAccountant(Limits{MonthlyBudget: 1, CostPer1KTokens: 1, AlertThreshold: 0.8, MaxTokensPerDay: 1000})

	if a.BudgetAlert() || a.OverBudget() {
		t.Fatal("No advisory expected before any usage")
	}

	a.AddTokens(800)
	if !a.BudgetAlert() {
		t.Error("Expected budget alert at 80% of budget")
	}
	if a.OverBudget() {
		t.Error("Not over budget yet")
	}

	a.AddTokens(300)
	if !a.OverBudget() {
		t.Error("Expected over budget")
	}
	if !a.OverDailyTokens(0) {
		t.Error("Expected daily token advisory at 1100 tokens")
	}
	if NewAccountant(Limits{}).OverDailyTokens(1 << 30) {
		t.Error("Zero daily limit disables the advisory")
	}
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	if l.MaxDailyOrders != 500 || l.MonthlyBudget != 100 || l.CostPer1KTokens != 0.002 {
		t.Errorf("DefaultLimits() = %+v", l)
	}
}
