// Package sync delivers library writes to storage in the background and keeps undelivered writes across restarts.
package sync

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	stdsync "sync"
	"time"

	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Scope selects the storage table a task writes to.
type Scope string

const (
	ScopeKV      Scope = "kv"
	ScopeLibrary Scope = "library"
)

// Op is what a task does to its key.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Task is one pending write. Tasks sharing owner, scope and key replace each other.
type Task struct {
	Owner     string `json:"owner"`
	Scope     Scope  `json:"scope"`
	Key       string `json:"key"`
	Op        Op     `json:"op"`
	Value     string `json:"value,omitempty"`
	Attempts  int    `json:"attempts,omitempty"`
	NotBefore int64  `json:"notBefore,omitempty"`

	seq      uint64
	restored bool
}

func (t Task) slot() string {
	return t.Owner + "\x00" + string(t.Scope) + "\x00" + t.Key
}

// Remote is the storage the queue writes to.
type Remote interface {
	Set(ctx context.Context, key, value, owner string) error
	UpsertEntry(ctx context.Context, owner, id string, data []byte) error
	DeleteEntry(ctx context.Context, owner, id string) error
}

var ErrQueueFull = errors.New("sync queue is full")

const (
	baseBackoff     = 100 * time.Millisecond
	maxJitter       = 100 * time.Millisecond
	defaultCapacity = 1024
)

// Queue holds at most one pending task per slot, the latest one.
type Queue struct {
	mu      stdsync.Mutex
	pending map[string]Task
	seq     uint64

	// drain serializes deliveries so one slot is never written twice at once.
	drain stdsync.Mutex

	remote      Remote
	capacity    int
	maxAttempts int
	interval    time.Duration
	wake        chan struct{}

	now    func() time.Time
	jitter func() time.Duration
}

// New returns a queue delivering to remote, sized from viper.
func New(remote Remote) *Queue {
	capacity := viper.GetInt(key.SyncQueueSize)
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Queue{
		pending:     make(map[string]Task),
		remote:      remote,
		capacity:    capacity,
		maxAttempts: lo.Max([]int{1, viper.GetInt(key.SyncMaxAttempts)}),
		interval:    time.Duration(lo.Max([]int{1, viper.GetInt(key.SyncInterval)})) * time.Second,
		wake:        make(chan struct{}, 1),
		now:         time.Now,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxJitter)))
		},
	}
}

// Enqueue stores task, replacing any pending task for the same slot.
// A new slot is refused with ErrQueueFull once the queue holds its capacity.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	slot := task.slot()
	if _, ok := q.pending[slot]; !ok && len(q.pending) >= q.capacity {
		return ErrQueueFull
	}

	q.seq++
	task.seq = q.seq
	q.pending[slot] = task
	q.signal()

	return nil
}

// signal wakes Run without blocking.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pending returns a copy of the pending tasks in enqueue order.
func (q *Queue) Pending() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sorted()
}

func (q *Queue) sorted() []Task {
	tasks := lo.Values(q.pending)
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].seq < tasks[j].seq
	})
	return tasks
}

// take removes and returns the tasks due at now, or every task when all is set.
func (q *Queue) take(all bool) []Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now().UnixMilli()
	due := lo.Filter(q.sorted(), func(t Task, _ int) bool {
		return all || t.NotBefore <= now
	})

	for _, t := range due {
		delete(q.pending, t.slot())
	}

	return due
}

// retry puts a failed task back unless a newer one took its slot meanwhile.
func (q *Queue) retry(task Task, err error) {
	task.Attempts++
	if task.Attempts >= q.maxAttempts {
		log.With(log.Fields{"key": task.Key, "attempts": task.Attempts}).
			WithError(err).Errorf("giving up on write")
		return
	}

	backoff := time.Duration(1<<task.Attempts)*baseBackoff + q.jitter()
	task.NotBefore = q.now().Add(backoff).UnixMilli()
	q.put(task)
}

// put re-inserts a taken task unless a newer one took its slot meanwhile.
func (q *Queue) put(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[task.slot()]; ok {
		return
	}
	q.pending[task.slot()] = task
}

func (q *Queue) deliver(ctx context.Context, task Task) error {
	switch {
	case task.Scope == ScopeKV:
		return q.remote.Set(ctx, task.Key, task.Value, task.Owner)
	case task.Op == OpDelete:
		return q.remote.DeleteEntry(ctx, task.Owner, task.Key)
	default:
		return q.remote.UpsertEntry(ctx, task.Owner, task.Key, []byte(task.Value))
	}
}

func (q *Queue) process(ctx context.Context, all bool) error {
	q.drain.Lock()
	defer q.drain.Unlock()

	var (
		errs        []error
		interrupted bool
	)
	for _, task := range q.take(all) {
		// A cancelled delivery did not fail, it goes back untouched.
		if ctx.Err() != nil {
			q.put(task)
			interrupted = true
			continue
		}

		if err := q.deliver(ctx, task); err != nil {
			if ctx.Err() != nil {
				q.put(task)
				interrupted = true
				continue
			}

			log.With(log.Fields{"key": task.Key, "op": task.Op}).Warnf("write failed: %v", err)
			errs = append(errs, fmt.Errorf("%s %s: %w", task.Op, task.Key, err))
			q.retry(task, err)
		}
	}

	if interrupted {
		errs = append(errs, ctx.Err())
	}

	return errors.Join(errs...)
}

// Settled returns the pending tasks once no delivery is in flight,
// so every write is either in storage or in the result.
func (q *Queue) Settled() []Task {
	q.drain.Lock()
	defer q.drain.Unlock()
	return q.Pending()
}

// Flush delivers every pending task once, due or not.
// Failed tasks stay queued and their errors are returned.
func (q *Queue) Flush(ctx context.Context) error {
	return q.process(ctx, true)
}

// Run delivers due tasks whenever something is enqueued, a backoff expires or the interval elapses.
// It returns when ctx is done.
func (q *Queue) Run(ctx context.Context) {
	timer := time.NewTimer(q.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-timer.C:
		}

		_ = q.process(ctx, false)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(q.next())
	}
}

// next is the wait until the earliest pending task is due, bounded by the interval.
func (q *Queue) next() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	wait := q.interval
	now := q.now().UnixMilli()
	for _, t := range q.pending {
		if d := time.Duration(t.NotBefore-now) * time.Millisecond; d < wait {
			wait = d
		}
	}

	return lo.Max([]time.Duration{wait, time.Millisecond})
}
