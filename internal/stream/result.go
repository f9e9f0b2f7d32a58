// Package stream turns a one-shot synchronous row source into a
// single-consumer pull iterator with typed error translation and
// end-of-stream metadata capture.
//
// Usage:
//
//	res := stream.NewResult(source, &stream.Options{Shape: stream.ShapeSearch})
//	if err := res.Start(ctx); err != nil { ... }
//	for {
//	    row, err := res.Next(ctx)
//	    if err == stream.Done {
//	        break
//	    }
//	    if err != nil { ... }
//	    use(row)
//	}
//	meta, _ := res.Metadata()
//
// A Result is single-pass and single-consumer: one goroutine drives Next,
// and a finished or failed Result cannot be restarted. Re-issuing the
// query means building a new Result.
package stream

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shoalstore/shoal-go/internal/errs"
	"github.com/shoalstore/shoal-go/internal/logger"
)

// Done is returned by Next when the stream is exhausted. It is a clean
// termination signal, not a failure.
var Done = errors.New("no more rows")

// State is the lifecycle position of a Result. Transitions are monotonic:
// NotStarted -> Streaming -> Finished, never backwards.
type State int

const (
	NotStarted State = iota
	Streaming
	Finished
)

func (s State) String() string {
	switch s {
	case Streaming:
		return "streaming"
	case Finished:
		return "finished"
	default:
		return "not_started"
	}
}

// Options tunes a Result. The zero value is valid: raw shape, queue
// capacity 1, no logging.
type Options struct {
	// Shape selects the row post-processing policy.
	Shape RowShape

	// QueueCapacity sizes the row delivery queue. Values below 1 are
	// raised to 1.
	QueueCapacity int

	// Logger receives debug events. Nil disables logging.
	Logger *logger.Logger
}

// Result is the pull iterator over one submitted query.
type Result struct {
	source RowSource
	shape  RowShape
	queue  chan *Row

	state   State
	meta    *Metadata
	failure error // sticky; every Next after a failure returns it again

	id  string
	log *logger.Logger
}

// NewResult wraps a RowSource. The source must be fresh: a Result never
// rewinds, so a source that has already been pulled yields a short stream.
func NewResult(source RowSource, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}
	capacity := opts.QueueCapacity
	if capacity < 1 {
		capacity = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	id := uuid.NewString()
	return &Result{
		source: source,
		shape:  opts.Shape,
		queue:  make(chan *Row, capacity),
		id:     id,
		log:    log.Component("stream").With().Str("stream_id", id).Logger(),
	}
}

// ID returns the correlation id attached to this stream's log events.
func (r *Result) ID() string {
	return r.id
}

// State returns the current lifecycle position.
func (r *Result) State() State {
	return r.state
}

// Start submits the query to the source. It may be called at most once;
// starting an already-started or finished Result fails with AlreadyStreamed.
func (r *Result) Start(ctx context.Context) error {
	if r.state != NotStarted {
		return errs.Newf(errs.ErrKindAlreadyStreamed,
			"stream already %s", r.state)
	}

	if err := r.source.Submit(ctx); err != nil {
		err = asTyped(err, "query submission failed")
		r.failure = err
		return err
	}

	r.state = Streaming
	r.log.Debug("query submitted")
	return nil
}

// Next delivers the next decoded row. It returns Done when the stream is
// exhausted; calling Next again after that keeps returning Done. After a
// failure every subsequent call returns the same error, so a consumer
// cannot accidentally resume a failed stream.
func (r *Result) Next(ctx context.Context) (*Row, error) {
	if r.failure != nil {
		return nil, r.failure
	}

	switch r.state {
	case NotStarted:
		return nil, errs.New(errs.ErrKindInvalidInput, "stream not started")
	case Finished:
		return nil, Done
	}

	raw, err := r.source.Pull(ctx)
	if err != nil {
		return nil, r.fail(asTyped(err, "row pull failed"))
	}

	switch raw.Kind {
	case RowError:
		return nil, r.fail(mapMarker(raw.Code, raw.Message))

	case RowEnd:
		r.state = Finished
		if err := r.fetchMetadata(ctx); err != nil {
			return nil, r.fail(err)
		}
		r.log.With().Any("total_rows", r.meta.Metrics.TotalRows).Logger().
			Debug("stream finished")
		return nil, Done

	case RowValue:
		row, err := decodeRow(raw.Value, r.shape)
		if err != nil {
			return nil, r.fail(asTyped(err, "row decoding failed"))
		}
		return r.deliver(ctx, row)

	default:
		return nil, r.fail(errs.Newf(errs.ErrKindInternal,
			"source produced unexpected item kind %d", raw.Kind))
	}
}

// deliver routes the row through the delivery queue. The enqueue is the
// producer suspension point; the dequeue must succeed immediately, and an
// empty queue right after a produce is an internal-consistency failure
// distinct from normal end-of-stream.
func (r *Result) deliver(ctx context.Context, row *Row) (*Row, error) {
	select {
	case r.queue <- row:
	case <-ctx.Done():
		return nil, r.fail(errs.Wrap(errs.ErrKindTimeout,
			"canceled while delivering row", ctx.Err()))
	}

	select {
	case out := <-r.queue:
		return out, nil
	default:
		return nil, r.fail(errs.New(errs.ErrKindEmptyDelivery,
			"row queue empty immediately after delivery"))
	}
}

// fetchMetadata pulls the single trailing item the source owes after the
// end sentinel.
func (r *Result) fetchMetadata(ctx context.Context) error {
	raw, err := r.source.Pull(ctx)
	if err != nil {
		return asTyped(err, "metadata fetch failed")
	}
	if raw.Kind != RowMetadata || raw.Meta == nil {
		return errs.Newf(errs.ErrKindInternal,
			"expected trailing metadata, got item kind %d", raw.Kind)
	}
	r.meta = raw.Meta
	return nil
}

// Metadata returns the trailing summary. It is only available once Next
// has returned Done.
func (r *Result) Metadata() (*Metadata, error) {
	if r.state != Finished || r.meta == nil {
		return nil, errs.New(errs.ErrKindInvalidInput,
			"metadata is available only after the stream is exhausted")
	}
	return r.meta, nil
}

// All starts the stream and drains every row. Convenience for callers that
// do not need incremental delivery.
func (r *Result) All(ctx context.Context) ([]*Row, error) {
	if err := r.Start(ctx); err != nil {
		return nil, err
	}

	var rows []*Row
	for {
		row, err := r.Next(ctx)
		if err == Done {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// fail records err as the sticky stream failure and returns it.
func (r *Result) fail(err error) error {
	r.failure = err
	r.log.ErrorWith("stream failed", err, nil)
	return err
}

// asTyped passes through errors already carrying a kind and wraps
// everything else as an internal failure.
func asTyped(err error, msg string) error {
	var typed *errs.Error
	if errors.As(err, &typed) {
		return err
	}
	return errs.Wrap(errs.ErrKindInternal, msg, err)
}

// mapMarker translates a server error marker into a typed error. Unknown
// codes map to an internal error so nothing is silently dropped.
func mapMarker(code uint32, message string) error {
	switch code {
	case CodeTimeout:
		return errs.Newf(errs.ErrKindTimeout, "server timeout: %s", message)
	case CodeAuthFailure:
		return errs.Newf(errs.ErrKindAuthenticationFailed, "authentication failed: %s", message)
	case CodeParsingFailed:
		return errs.Newf(errs.ErrKindParsingFailed, "query rejected: %s", message)
	case CodeIndexNotFound:
		return errs.Newf(errs.ErrKindIndexNotFound, "index not found: %s", message)
	case CodeRateLimited:
		return errs.Newf(errs.ErrKindRateLimited, "rate limited: %s", message)
	case CodeQuotaExceeded:
		return errs.Newf(errs.ErrKindQuotaExceeded, "quota exceeded: %s", message)
	default:
		return errs.Newf(errs.ErrKindInternal,
			"server error %d: %s", code, message)
	}
}
