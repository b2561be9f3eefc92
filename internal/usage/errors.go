package usage

import "errors"

// ErrDailyCapExceeded rejects a run whose order count is above max_daily_orders.
var ErrDailyCapExceeded = errors.New("daily order limit exceeded")
