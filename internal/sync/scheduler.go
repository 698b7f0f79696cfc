package sync

import (
	"github.com/mcmeskajr-prog/trackall/library"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/storage"
)

// Scheduler turns library changes of one owner into queued writes.
type Scheduler struct {
	Queue *Queue
	Owner string
}

// Schedule never blocks. Writes refused by a full queue are logged and dropped.
func (s Scheduler) Schedule(changes []library.Change) {
	for _, change := range changes {
		if err := s.Queue.Enqueue(s.task(change)); err != nil {
			log.With(log.Fields{"id": change.ID, "kind": change.Kind}).WithError(err).Errorf("dropping write")
		}
	}
}

func (s Scheduler) task(change library.Change) Task {
	switch change.Kind {
	case library.ChangeFavorites:
		return Task{Owner: s.Owner, Scope: ScopeKV, Key: storage.KeyFavorites, Op: OpSet, Value: string(change.Value)}
	case library.ChangeDelete:
		return Task{Owner: s.Owner, Scope: ScopeLibrary, Key: change.ID, Op: OpDelete}
	default:
		return Task{Owner: s.Owner, Scope: ScopeLibrary, Key: change.ID, Op: OpSet, Value: string(change.Value)}
	}
}
