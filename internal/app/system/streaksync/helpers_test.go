package streaksync_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/testutil"
	"go.uber.org/zap"
)

// today is the fixed "now" for these tests: Saturday, October 10, 2026.
var today = time.Date(2026, time.October, 10, 12, 0, 0, 0, time.UTC)

var october = calendar.Month{Year: 2026, Month: time.October}

var runner = streaksync.User{ID: "u1", Name: "Test Runner", Email: "u1@test.com"}

type env struct {
	docs    *faultyStore
	fx      *testutil.Fixtures
	sync    *streaksync.Synchronizer
	metrics *metrics.Metrics
	ctx     context.Context
}

func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()
	docs := &faultyStore{Store: docstore.NewMemory(), failures: map[string]int{}}
	m := metrics.New()
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	return &env{
		docs:    docs,
		fx:      testutil.NewFixtures(t, docs),
		metrics: m,
		ctx:     ctx,
		sync: streaksync.New(docs, zap.NewNop(),
			streaksync.WithClock(func() time.Time { return now }),
			streaksync.WithLocation(time.UTC),
			streaksync.WithRetry(3, time.Millisecond),
			streaksync.WithMetrics(m),
		),
	}
}

// at returns a synchronizer over the same store whose clock reads now.
func (e *env) at(now time.Time) *streaksync.Synchronizer {
	return streaksync.New(e.docs, zap.NewNop(),
		streaksync.WithClock(func() time.Time { return now }),
		streaksync.WithLocation(time.UTC),
		streaksync.WithRetry(3, time.Millisecond),
		streaksync.WithMetrics(e.metrics),
	)
}

var errBoom = errors.New("boom")

// faultyStore fails selected operations. failures maps "Op:collection"
// to the number of calls to fail; a negative count fails forever.
type faultyStore struct {
	docstore.Store
	mu        sync.Mutex
	failures  map[string]int
	transient bool
	calls     map[string]int
}

func (f *faultyStore) failOn(op, coll string, n int, transient bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+coll] = n
	f.transient = transient
}

func (f *faultyStore) check(op, coll string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	key := op + ":" + coll
	f.calls[key]++
	n, ok := f.failures[key]
	if !ok || n == 0 {
		return nil
	}
	if n > 0 {
		f.failures[key] = n - 1
	}
	if f.transient {
		return fmt.Errorf("%w: %v", docstore.ErrTransient, errBoom)
	}
	return errBoom
}

func (f *faultyStore) callCount(op, coll string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op+":"+coll]
}

func (f *faultyStore) Get(ctx context.Context, coll, id string, out any) error {
	if err := f.check("Get", coll); err != nil {
		return err
	}
	return f.Store.Get(ctx, coll, id, out)
}

func (f *faultyStore) Insert(ctx context.Context, coll, id string, doc any) error {
	if err := f.check("Insert", coll); err != nil {
		return err
	}
	return f.Store.Insert(ctx, coll, id, doc)
}

func (f *faultyStore) Update(ctx context.Context, coll, id string, fields docstore.Fields) error {
	if err := f.check("Update", coll); err != nil {
		return err
	}
	return f.Store.Update(ctx, coll, id, fields)
}

func (f *faultyStore) Add(ctx context.Context, coll string, doc any) (string, error) {
	if err := f.check("Add", coll); err != nil {
		return "", err
	}
	return f.Store.Add(ctx, coll, doc)
}

func (f *faultyStore) Query(ctx context.Context, coll string, filter docstore.Filter, out any) error {
	if err := f.check("Query", coll); err != nil {
		return err
	}
	return f.Store.Query(ctx, coll, filter, out)
}

// dayAt returns noon UTC on day of October 2026.
func dayAt(day int) time.Time {
	return time.Date(2026, time.October, day, 12, 0, 0, 0, time.UTC)
}

func seq(from, to int) []int {
	out := []int{}
	for d := from; d <= to; d++ {
		out = append(out, d)
	}
	return out
}
