package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/library"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type write struct {
	Op    string
	Key   string
	Value string
}

type fakeRemote struct {
	mu     stdsync.Mutex
	writes []write
	fail   error

	// during runs inside every delivery, before it completes.
	during func()
}

func (f *fakeRemote) record(w write) error {
	if f.during != nil {
		f.during()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, w)
	return nil
}

func (f *fakeRemote) Set(_ context.Context, key, value, _ string) error {
	return f.record(write{"set", key, value})
}

func (f *fakeRemote) UpsertEntry(_ context.Context, _, id string, data []byte) error {
	return f.record(write{"upsert", id, string(data)})
}

func (f *fakeRemote) DeleteEntry(_ context.Context, _, id string) error {
	return f.record(write{"delete", id, ""})
}

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func newQueue(remote Remote) *Queue {
	q := New(remote)
	q.capacity = 3
	q.maxAttempts = 3
	q.jitter = func() time.Duration { return 0 }
	clock := time.UnixMilli(1_700_000_000_000)
	q.now = func() time.Time { return clock }
	return q
}

func upsert(id, value string) Task {
	return Task{Owner: "alice", Scope: ScopeLibrary, Key: id, Op: OpSet, Value: value}
}

var errOffline = errors.New("offline")

func TestEnqueue(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		q := newQueue(&fakeRemote{})

		Convey("The latest task for a key wins", func() {
			So(q.Enqueue(upsert("a", "1")), ShouldBeNil)
			So(q.Enqueue(Task{Owner: "alice", Scope: ScopeLibrary, Key: "a", Op: OpDelete}), ShouldBeNil)

			pending := q.Pending()
			So(pending, ShouldHaveLength, 1)
			So(pending[0].Op, ShouldEqual, OpDelete)
		})

		Convey("Owners and scopes do not coalesce", func() {
			So(q.Enqueue(upsert("a", "1")), ShouldBeNil)
			So(q.Enqueue(Task{Owner: "bob", Scope: ScopeLibrary, Key: "a", Op: OpSet}), ShouldBeNil)
			So(q.Enqueue(Task{Owner: "alice", Scope: ScopeKV, Key: "a", Op: OpSet}), ShouldBeNil)
			So(q.Len(), ShouldEqual, 3)
		})

		Convey("A full queue refuses new keys but still coalesces", func() {
			for _, id := range []string{"a", "b", "c"} {
				So(q.Enqueue(upsert(id, "1")), ShouldBeNil)
			}
			So(q.Enqueue(upsert("d", "1")), ShouldEqual, ErrQueueFull)
			So(q.Enqueue(upsert("a", "2")), ShouldBeNil)
			So(q.Len(), ShouldEqual, 3)
		})
	})
}

func TestFlush(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with pending writes", t, func() {
		remote := &fakeRemote{}
		q := newQueue(remote)
		So(q.Enqueue(upsert("a", `{"id":"a"}`)), ShouldBeNil)
		So(q.Enqueue(Task{Owner: "alice", Scope: ScopeKV, Key: storage.KeyTMDB, Op: OpSet, Value: "k"}), ShouldBeNil)

		Convey("Flush delivers in enqueue order", func() {
			So(q.Flush(ctx), ShouldBeNil)
			So(q.Len(), ShouldEqual, 0)
			So(remote.writes, ShouldResemble, []write{
				{"upsert", "a", `{"id":"a"}`},
				{"set", storage.KeyTMDB, "k"},
			})
		})

		Convey("Failures stay queued with a backoff", func() {
			remote.fail = errOffline

			err := q.Flush(ctx)
			So(errors.Is(err, errOffline), ShouldBeTrue)

			pending := q.Pending()
			So(pending, ShouldHaveLength, 2)
			So(pending[0].Attempts, ShouldEqual, 1)
			So(pending[0].NotBefore, ShouldEqual, q.now().Add(200*time.Millisecond).UnixMilli())

			Convey("Tasks are dropped after the last attempt", func() {
				_ = q.Flush(ctx)
				_ = q.Flush(ctx)
				So(q.Len(), ShouldEqual, 0)
			})
		})

		Convey("A retry never replaces a newer write", func() {
			remote.fail = errOffline
			remote.during = func() {
				remote.during = nil
				_ = q.Enqueue(upsert("a", `{"id":"a","v":2}`))
			}

			_ = q.Flush(ctx)

			task, ok := q.pending[upsert("a", "").slot()]
			So(ok, ShouldBeTrue)
			So(task.Value, ShouldEqual, `{"id":"a","v":2}`)
			So(task.Attempts, ShouldEqual, 0)
		})

		Convey("A cancelled delivery keeps its attempts", func() {
			cancelled, cancel := context.WithCancel(ctx)
			remote.during = func() {
				remote.during = nil
				cancel()
				remote.fail = context.Canceled
			}

			err := q.Flush(cancelled)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)

			pending := q.Pending()
			So(pending, ShouldHaveLength, 2)
			for _, task := range pending {
				So(task.Attempts, ShouldEqual, 0)
				So(task.NotBefore, ShouldEqual, 0)
			}

			remote.fail = nil
			So(q.Flush(ctx), ShouldBeNil)
			So(remote.writes, ShouldHaveLength, 2)
		})

		Convey("Settled reports writes that failed to deliver", func() {
			remote.fail = errOffline
			_ = q.Flush(ctx)
			So(q.Settled(), ShouldHaveLength, 2)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running queue", t, func() {
		remote := &fakeRemote{}
		q := New(remote)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			q.Run(ctx)
			close(done)
		}()

		So(q.Enqueue(upsert("a", "1")), ShouldBeNil)

		deadline := time.Now().Add(5 * time.Second)
		for remote.count() == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}

		cancel()
		<-done

		So(remote.count(), ShouldEqual, 1)
		So(q.Len(), ShouldEqual, 0)
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given a queue with pending writes", t, func() {
		q := newQueue(&fakeRemote{})
		So(q.Enqueue(upsert("a", "old")), ShouldBeNil)
		So(q.Enqueue(upsert("b", "1")), ShouldBeNil)
		So(q.Save(), ShouldBeNil)

		Convey("A new queue restores them", func() {
			restored := newQueue(&fakeRemote{})
			So(restored.Load(), ShouldBeNil)
			So(restored.Pending(), ShouldHaveLength, 2)
			So(restored.Pending()[0].Key, ShouldEqual, "a")
		})

		Convey("Writes made since startup win over the snapshot", func() {
			restored := newQueue(&fakeRemote{})
			So(restored.Enqueue(upsert("a", "new")), ShouldBeNil)
			So(restored.Load(), ShouldBeNil)

			task := restored.pending[upsert("a", "").slot()]
			So(task.Value, ShouldEqual, "new")
		})

		Convey("An empty queue removes the snapshot", func() {
			So(q.Flush(context.Background()), ShouldBeNil)
			So(q.Save(), ShouldBeNil)

			restored := newQueue(&fakeRemote{})
			So(restored.Load(), ShouldBeNil)
			So(restored.Len(), ShouldEqual, 0)
		})
	})
}

func TestScheduler(t *testing.T) {
	Convey("Given a library wired to the queue", t, func() {
		remote := &fakeRemote{}
		q := newQueue(remote)
		store := library.New(Scheduler{Queue: q, Owner: "alice"})
		record := media.Record{ID: "al-anime-1", Title: "Frieren", Type: media.TypeAnime}

		Convey("Add, rate and remove coalesce into a single delete", func() {
			store.Add(record, media.StatusPlanned, 0)
			store.SetRating(record.ID, 8)
			store.Remove(record.ID)

			So(q.Flush(context.Background()), ShouldBeNil)
			So(remote.writes, ShouldResemble, []write{{"delete", record.ID, ""}})
		})

		Convey("Favorites are written as one value", func() {
			_, err := store.ToggleFavorite(record)
			So(err, ShouldBeNil)

			So(q.Flush(context.Background()), ShouldBeNil)
			So(remote.writes, ShouldHaveLength, 1)
			So(remote.writes[0].Key, ShouldEqual, storage.KeyFavorites)
			So(remote.writes[0].Value, ShouldContainSubstring, record.ID)
		})
	})
}
