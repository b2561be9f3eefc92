package processor

import "errors"

var (
	// ErrEmptySheet is reported when the source worksheet has no header row.
	ErrEmptySheet = errors.New("source sheet is empty")
	// ErrNoOrders is reported when no row passes the date filter.
	ErrNoOrders = errors.New("no orders on or after the cutoff date")
	// ErrBlankOrderID drops a row whose order id cell is empty.
	ErrBlankOrderID = errors.New("blank order id")
)
