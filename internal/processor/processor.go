package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codeberg.org/snonux/ordertrans/internal/batch"
	"codeberg.org/snonux/ordertrans/internal/fields"
	"codeberg.org/snonux/ordertrans/internal/filter"
	"codeberg.org/snonux/ordertrans/internal/instructions"
	"codeberg.org/snonux/ordertrans/internal/journal"
	"codeberg.org/snonux/ordertrans/internal/sheets"
	"codeberg.org/snonux/ordertrans/internal/translation"
	"codeberg.org/snonux/ordertrans/internal/usage"
)

// ProcessingDateLayout formats the processing date column.
const ProcessingDateLayout = "2006-01-02"

// Journal persists run outcomes. *journal.Journal satisfies it.
type Journal interface {
	Record(ctx context.Context, run journal.Run) (string, error)
	TokensSince(ctx context.Context, t time.Time) (int, error)
}

// Deps are the collaborators of a Processor. Journal, Logger and Now are
// optional.
type Deps struct {
	Source      sheets.Spreadsheet
	Destination sheets.Spreadsheet
	Backend     translation.Backend
	Journal     Journal
	Logger      *zap.Logger
	Now         func() time.Time
}

// Options are the run settings taken from the configuration.
type Options struct {
	SourceSheet string
	TargetSheet string
	Limits      usage.Limits
	Translation translation.Options
	BatchSize   int
	WritePause  time.Duration
}

// RowFailure is a filtered order dropped during processing.
type RowFailure struct {
	Row     int
	OrderID string
	Err     error
}

// Result is the outcome of one run.
type Result struct {
	RunID     string
	Success   bool
	Message   string
	Err       error
	State     State
	Found     int
	Processed int
	Written   int

	Skipped             []filter.Skip
	Dropped             []RowFailure
	TranslationFailures int
	Advisories          []string

	Usage usage.Snapshot
}

// Processor wires the pipeline steps together.
type Processor struct {
	deps   Deps
	opts   Options
	writer *batch.Writer
	logger *zap.Logger
}

// New creates a Processor.
func New(deps Deps, opts Options) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Destination == nil {
		deps.Destination = deps.Source
	}
	return &Processor{
		deps:   deps,
		opts:   opts,
		writer: batch.NewWriter(opts.TargetSheet, opts.BatchSize, opts.WritePause, logger),
		logger: logger,
	}
}

// run holds the state of one pipeline run. Usage counters start at zero for
// every run.
type run struct {
	id         string
	started    time.Time
	cutoff     time.Time
	accountant *usage.Accountant
	result     Result
	logger     *zap.Logger
}

func (p *Processor) newRun(cutoff time.Time) *run {
	id := uuid.NewString()
	return &run{
		id:         id,
		started:    p.deps.Now(),
		cutoff:     cutoff,
		accountant: usage.NewAccountant(p.opts.Limits),
		result:     Result{RunID: id, State: Idle},
		logger:     p.logger.With(zap.String("run_id", id)),
	}
}

func (r *run) transition(s State) {
	r.logger.Debug("pipeline state", zap.Stringer("from", r.result.State), zap.Stringer("to", s))
	r.result.State = s
}

func (r *run) fail(s State, err error) Result {
	r.transition(s)
	r.result.Success = false
	r.result.Message = err.Error()
	r.result.Err = err
	r.result.Usage = r.accountant.Snapshot()
	r.logger.Error("pipeline run failed", zap.Stringer("state", s), zap.Error(err))
	return r.result
}

// Run executes the pipeline for orders dated on or after cutoff.
func (p *Processor) Run(ctx context.Context, cutoff time.Time) Result {
	r := p.newRun(cutoff)
	res := p.execute(ctx, r)
	p.record(ctx, r, res)
	return res
}

// DryRun resolves, filters and cap-checks without translating or writing.
func (p *Processor) DryRun(ctx context.Context, cutoff time.Time) Result {
	r := p.newRun(cutoff)
	if _, res, ok := p.prepare(ctx, r); !ok {
		return res
	}
	r.result.Success = true
	r.result.Message = fmt.Sprintf("Found %d orders to process (dry run, nothing written)", r.result.Found)
	r.result.Usage = r.accountant.Snapshot()
	return r.result
}

// prepare runs the steps up to and including the cap check.
func (p *Processor) prepare(ctx context.Context, r *run) ([]fields.Order, Result, bool) {
	ws, err := p.deps.Source.Worksheet(ctx, p.opts.SourceSheet)
	if err != nil {
		return nil, r.fail(Failed, fmt.Errorf("failed to open source sheet: %w", err)), false
	}
	values, err := ws.Values(ctx)
	if err != nil {
		return nil, r.fail(Failed, fmt.Errorf("failed to read source sheet: %w", err)), false
	}
	if len(values) == 0 {
		return nil, r.fail(Failed, fmt.Errorf("%w: %s", ErrEmptySheet, p.opts.SourceSheet)), false
	}

	res := fields.Resolve(values[0])
	if err := res.Validate(fields.Required); err != nil {
		return nil, r.fail(Failed, err), false
	}
	r.transition(FieldsResolved)

	orders, skips := filter.Apply(values[1:], res, r.cutoff)
	for _, s := range skips {
		r.logger.Warn("row skipped",
			zap.Int("row", s.Row),
			zap.String("reason", string(s.Reason)),
			zap.String("value", s.Value))
	}
	r.result.Skipped = skips
	r.result.Found = len(orders)
	if len(orders) == 0 {
		return nil, r.fail(Failed, fmt.Errorf("%w %s", ErrNoOrders, r.cutoff.Format(ProcessingDateLayout))), false
	}
	r.transition(Filtered)

	if err := r.accountant.CheckOrderCap(len(orders)); err != nil {
		return nil, r.fail(Capped, err), false
	}
	return orders, r.result, true
}

func (p *Processor) execute(ctx context.Context, r *run) Result {
	orders, res, ok := p.prepare(ctx, r)
	if !ok {
		return res
	}

	r.transition(Processing)
	client := translation.NewClient(p.deps.Backend, r.accountant, p.opts.Translation, r.logger)
	processingDate := r.started.Format(ProcessingDateLayout)

	records := make([]batch.Record, 0, len(orders))
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return r.fail(Failed, fmt.Errorf("run canceled after %d orders: %w", len(records), err))
		}

		record, err := p.processOrder(ctx, r, client, order, processingDate)
		if err != nil {
			r.logger.Warn("order dropped",
				zap.Int("row", order.Row),
				zap.String("order_id", order.OrderID),
				zap.Error(err))
			r.result.Dropped = append(r.result.Dropped, RowFailure{Row: order.Row, OrderID: order.OrderID, Err: err})
			continue
		}
		records = append(records, record)
		r.accountant.AddOrder()
	}
	if err := ctx.Err(); err != nil {
		return r.fail(Failed, fmt.Errorf("run canceled before writing: %w", err))
	}
	r.result.Processed = len(records)

	written, err := p.writer.Write(ctx, p.deps.Destination, records)
	r.result.Written = written
	if err != nil {
		return r.fail(Failed, err)
	}
	r.transition(Written)

	p.advise(ctx, r)

	r.transition(Reported)
	r.result.Success = true
	r.result.Message = fmt.Sprintf("Successfully processed %d of %d orders", r.result.Processed, r.result.Found)
	if len(r.result.Advisories) > 0 {
		r.result.Message += " (" + strings.Join(r.result.Advisories, "; ") + ")"
	}
	r.result.Usage = r.accountant.Snapshot()
	return r.result
}

// processOrder translates the three free-text fields of order and builds its
// record. Translation failures keep the sentinel text and do not fail the row.
func (p *Processor) processOrder(ctx context.Context, r *run, client *translation.Client, order fields.Order, processingDate string) (batch.Record, error) {
	if strings.TrimSpace(order.OrderID) == "" {
		return batch.Record{}, ErrBlankOrderID
	}

	translate := func(field fields.Key, text string) string {
		res := client.Translate(ctx, text)
		if res.Failed() {
			r.result.TranslationFailures++
			r.logger.Warn("translation failed",
				zap.Int("row", order.Row),
				zap.String("order_id", order.OrderID),
				zap.String("field", string(field)),
				zap.Error(res.Err))
		}
		return res.Text
	}

	details := translate(fields.ReviewDetails, order.ReviewDetails)
	callContent := translate(fields.CallContent, order.CallContent)
	advice := translate(fields.ReviewAdvice, order.ReviewAdvice)

	return batch.Record{
		ReviewDate:     order.ReviewDate,
		OrderID:        order.OrderID,
		ReviewDetails:  details,
		UWInstructions: instructions.Format(callContent, advice, order.NeedCall),
		ProcessingDate: processingDate,
	}, nil
}

// advise adds the budget and daily token advisories. Neither halts the run.
func (p *Processor) advise(ctx context.Context, r *run) {
	limits := r.accountant.Limits()

	if r.accountant.BudgetAlert() {
		msg := fmt.Sprintf("estimated cost $%.4f reached %.0f%% of the $%.2f monthly budget",
			r.accountant.EstimatedCost(), limits.AlertThreshold*100, limits.MonthlyBudget)
		r.result.Advisories = append(r.result.Advisories, msg)
		r.logger.Warn("budget alert", zap.Float64("estimated_cost", r.accountant.EstimatedCost()),
			zap.Float64("monthly_budget", limits.MonthlyBudget))
	}

	if p.deps.Journal == nil || limits.MaxTokensPerDay <= 0 {
		return
	}
	prior, err := p.deps.Journal.TokensSince(ctx, journal.StartOfDay(r.started))
	if err != nil {
		r.logger.Warn("failed to read daily token usage", zap.Error(err))
		return
	}
	if r.accountant.OverDailyTokens(prior) {
		total := prior + r.accountant.Snapshot().TokensUsed
		msg := fmt.Sprintf("%d tokens used today, daily limit is %d", total, limits.MaxTokensPerDay)
		r.result.Advisories = append(r.result.Advisories, msg)
		r.logger.Warn("daily token limit exceeded", zap.Int("tokens_today", total),
			zap.Int("max_tokens_per_day", limits.MaxTokensPerDay))
	}
}

// record appends the outcome to the journal. Journal errors are logged only.
func (p *Processor) record(ctx context.Context, r *run, res Result) {
	if p.deps.Journal == nil {
		return
	}
	// The outcome is still recorded when the run itself was canceled.
	ctx = context.WithoutCancel(ctx)
	_, err := p.deps.Journal.Record(ctx, journal.Run{
		ID:              r.id,
		StartedAt:       r.started,
		FinishedAt:      p.deps.Now(),
		Cutoff:          r.cutoff,
		State:           res.State.String(),
		Success:         res.Success,
		Message:         res.Message,
		OrdersFound:     res.Found,
		OrdersProcessed: res.Processed,
		TokensUsed:      res.Usage.TokensUsed,
		EstimatedCost:   res.Usage.EstimatedCost,
	})
	if err != nil {
		r.logger.Warn("failed to record run", zap.Error(err))
	}
}
