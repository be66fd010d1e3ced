package flakeid

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lypee/flakeid/base"
	"github.com/lypee/flakeid/common"
)

// Factory mints strictly increasing snowflakes for one server/worker pair.
// It is safe for concurrent use. Two factories configured with the same
// server and worker id will collide; assigning distinct ids is up to the caller.
type Factory struct {
	layout   Layout
	serverID uint32
	workerID uint32

	clock      func() time.Time
	maxRetries int
	retryDelay time.Duration

	mu                 sync.Mutex
	increment          uint32 // next increment to hand out
	incrementTimestamp int64  // ms since common.Epoch of the last id
}

func New(ofs ...OptFunc) (*Factory, error) {
	opt := DefaultOpt()
	for _, op := range ofs {
		op(opt)
	}

	layout, err := NewLayout(opt.ServerIDBits, opt.WorkerIDBits)
	if err != nil {
		return nil, err
	}
	if opt.ServerID < 0 || uint64(opt.ServerID) > uint64(layout.ServerIDMask()) {
		return nil, common.ConfigErr.WithMsg("invalid server_id: %d (possible values: from 0 to %d inclusive)", opt.ServerID, layout.ServerIDMask())
	}
	if opt.WorkerID < 0 || uint64(opt.WorkerID) > uint64(layout.WorkerIDMask()) {
		return nil, common.ConfigErr.WithMsg("invalid worker_id: %d (possible values: from 0 to %d inclusive)", opt.WorkerID, layout.WorkerIDMask())
	}
	if opt.MaxRetries < 0 {
		return nil, common.ConfigErr.WithMsg("max_retries must be non-negative, got %d", opt.MaxRetries)
	}
	if opt.RetryDelay < 0 {
		return nil, common.ConfigErr.WithMsg("retry_delay must be non-negative, got %s", opt.RetryDelay)
	}
	if opt.Clock == nil {
		opt.Clock = time.Now
	}

	return &Factory{
		layout:     layout,
		serverID:   uint32(opt.ServerID),
		workerID:   uint32(opt.WorkerID),
		clock:      opt.Clock,
		maxRetries: opt.MaxRetries,
		retryDelay: opt.RetryDelay,
	}, nil
}

func (f *Factory) Layout() Layout { return f.layout }
func (f *Factory) ServerID() uint32 { return f.serverID }
func (f *Factory) WorkerID() uint32 { return f.workerID }

// Create mints the next snowflake. It fails with common.ClockErr when the
// clock is behind the last id and with common.OverflowErr once the current
// millisecond has used every increment.
func (f *Factory) Create() (Snowflake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.create()
}

func (f *Factory) create() (Snowflake, error) {
	ts := f.clock().UnixMilli() - common.Epoch
	if ts < f.incrementTimestamp {
		base.L().Error().
			Int64("now", ts).
			Int64("last", f.incrementTimestamp).
			Uint32("server_id", f.serverID).
			Uint32("worker_id", f.workerID).
			Msg("clock moved backwards")
		return Snowflake{}, common.ClockErr.WithMsg("clock moved backwards: got %d ms since epoch, previously %d", ts, f.incrementTimestamp)
	}

	if ts > f.incrementTimestamp {
		f.increment = 0
		f.incrementTimestamp = ts
	} else if f.increment > f.layout.IncrementMax() {
		return Snowflake{}, common.OverflowErr.WithMsg("increment overflow at %d ms since epoch", ts)
	}

	fields := Fields{
		Timestamp: ts + common.Epoch,
		ServerID:  f.serverID,
		WorkerID:  f.workerID,
		Increment: f.increment,
	}
	raw := f.layout.Encode(fields)
	f.increment++

	return newSnowflake(fields, raw), nil
}

// CreateSafe is Create that waits out increment overflow, up to the
// configured number of retries. Exhaustion returns common.RetryErr, which
// also matches common.OverflowErr. Other errors are returned at once.
func (f *Factory) CreateSafe(ctx context.Context) (Snowflake, error) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for try := 0; ; try++ {
		s, err := f.Create()
		if err == nil || !errors.Is(err, common.OverflowErr) {
			return s, err
		}
		if try >= f.maxRetries {
			base.WarningF("increment overflow persisted after %d retries", try)
			return Snowflake{}, common.RetryErr.WithMsg("increment overflow persisted after %d retries", try).WithTrueErr(err)
		}
		base.DebugF("increment overflow, retry %d", try+1)

		if timer == nil {
			timer = time.NewTimer(f.retryDelay)
		} else {
			timer.Reset(f.retryDelay)
		}
		select {
		case <-ctx.Done():
			return Snowflake{}, ctx.Err()
		case <-timer.C:
		}
	}
}

// CreateBatch mints n snowflakes with CreateSafe.
func (f *Factory) CreateBatch(ctx context.Context, n int) ([]Snowflake, error) {
	if n <= 0 {
		return nil, common.OpErr.WithMsg("batch size must be positive, got %d", n)
	}
	out := make([]Snowflake, 0, n)
	for i := 0; i < n; i++ {
		s, err := f.CreateSafe(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *Factory) Parse(input interface{}, enc Encoding) (Snowflake, error) {
	return f.layout.Parse(input, enc)
}

func (f *Factory) ParseBytes(b []byte) (Snowflake, error) { return f.layout.ParseBytes(b) }

func (f *Factory) ParseUint64(v uint64) (Snowflake, error) { return f.layout.ParseUint64(v) }

func (f *Factory) ParseString(s string, enc Encoding) (Snowflake, error) {
	return f.layout.ParseString(s, enc)
}
