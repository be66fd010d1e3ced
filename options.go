package flakeid

import (
	"time"

	"github.com/lypee/flakeid/common"
)

// Opt holds Factory construction settings.
type Opt struct {
	ServerIDBits int
	WorkerIDBits int
	ServerID     int
	WorkerID     int

	// MaxRetries bounds how often CreateSafe retries an exhausted millisecond.
	MaxRetries int
	RetryDelay time.Duration

	Clock func() time.Time
}

type OptFunc func(*Opt)

func DefaultOpt() *Opt {
	return &Opt{
		ServerIDBits: common.DefaultServerIDBits,
		WorkerIDBits: common.DefaultWorkerIDBits,
		MaxRetries:   common.MaxRetries,
		RetryDelay:   common.DefaultRetryDelay,
		Clock:        time.Now,
	}
}

func WithServerIDBits(n int) OptFunc {
	return func(o *Opt) { o.ServerIDBits = n }
}

func WithWorkerIDBits(n int) OptFunc {
	return func(o *Opt) { o.WorkerIDBits = n }
}

func WithServerID(id int) OptFunc {
	return func(o *Opt) { o.ServerID = id }
}

func WithWorkerID(id int) OptFunc {
	return func(o *Opt) { o.WorkerID = id }
}

// WithMaxRetries sets the CreateSafe retry budget; 0 disables retrying.
func WithMaxRetries(n int) OptFunc {
	return func(o *Opt) { o.MaxRetries = n }
}

func WithRetryDelay(d time.Duration) OptFunc {
	return func(o *Opt) { o.RetryDelay = d }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) OptFunc {
	return func(o *Opt) { o.Clock = clock }
}
