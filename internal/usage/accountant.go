package usage

import "fmt"

// Limits are the configured ceilings. They are never modified by a run.
type Limits struct {
	MonthlyBudget   float64 // USD
	MaxDailyOrders  int
	CostPer1KTokens float64 // USD
	AlertThreshold  float64 // fraction of MonthlyBudget, 0 disables the alert
	MaxTokensPerDay int     // 0 disables the advisory
}

// DefaultLimits mirrors the shipped deployment settings.
func DefaultLimits() Limits {
	return Limits{
		MonthlyBudget:   100,
		MaxDailyOrders:  500,
		CostPer1KTokens: 0.002,
		AlertThreshold:  0.8,
		MaxTokensPerDay: 50000,
	}
}

// Snapshot is a read-only copy of the counters and limits.
type Snapshot struct {
	OrdersProcessed int
	TokensUsed      int
	EstimatedCost   float64
	MonthlyBudget   float64
	MaxDailyOrders  int
}

// Accountant holds the counters of one run. It is used from a single
// goroutine and needs no locking.
type Accountant struct {
	limits          Limits
	ordersProcessed int
	tokensUsed      int
}

// NewAccountant starts a run with zeroed counters.
func NewAccountant(limits Limits) *Accountant {
	return &Accountant{limits: limits}
}

// Limits returns the configured limits.
func (a *Accountant) Limits() Limits {
	return a.limits
}

// AddTokens records tokens reported by a successful translation call.
func (a *Accountant) AddTokens(n int) {
	if n > 0 {
		a.tokensUsed += n
	}
}

// AddOrder records one completed order.
func (a *Accountant) AddOrder() {
	a.ordersProcessed++
}

// EstimatedCost converts tokens used into USD.
func (a *Accountant) EstimatedCost() float64 {
	return Cost(a.tokensUsed, a.limits.CostPer1KTokens)
}

// Cost converts a token count into USD at costPer1K.
func Cost(tokens int, costPer1K float64) float64 {
	return float64(tokens) / 1000 * costPer1K
}

// Snapshot returns the current counters.
func (a *Accountant) Snapshot() Snapshot {
	return Snapshot{
		OrdersProcessed: a.ordersProcessed,
		TokensUsed:      a.tokensUsed,
		EstimatedCost:   a.EstimatedCost(),
		MonthlyBudget:   a.limits.MonthlyBudget,
		MaxDailyOrders:  a.limits.MaxDailyOrders,
	}
}

// CheckOrderCap rejects a run of n orders when n is above the daily cap.
// The cap is a hard ceiling: with a cap of zero any order is rejected.
func (a *Accountant) CheckOrderCap(n int) error {
	limit := a.limits.MaxDailyOrders
	if n > limit {
		return fmt.Errorf("%w: %d orders found, limit is %d", ErrDailyCapExceeded, n, limit)
	}
	return nil
}

// OverBudget reports whether the estimated cost has passed the monthly budget.
// Advisory only.
func (a *Accountant) OverBudget() bool {
	return a.limits.MonthlyBudget > 0 && a.EstimatedCost() > a.limits.MonthlyBudget
}

// BudgetAlert reports whether the estimated cost reached the alert threshold
// of the monthly budget. Advisory only.
func (a *Accountant) BudgetAlert() bool {
	if a.limits.MonthlyBudget <= 0 || a.limits.AlertThreshold <= 0 {
		return false
	}
	return a.EstimatedCost() >= a.limits.AlertThreshold*a.limits.MonthlyBudget
}

// OverDailyTokens reports whether priorTokens plus this run's tokens exceed
// MaxTokensPerDay. Advisory only.
func (a *Accountant) OverDailyTokens(priorTokens int) bool {
	limit := a.limits.MaxTokensPerDay
	return limit > 0 && priorTokens+a.tokensUsed > limit
}
