package library

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
)

// ChangeKind tells the remote store what to do with a Change.
type ChangeKind string

const (
	ChangeUpsert    ChangeKind = "upsert"
	ChangeDelete    ChangeKind = "delete"
	ChangeFavorites ChangeKind = "favorites"
)

// Change is one remote write produced by a mutation.
// Value is the serialized entry for upserts and the serialized list for favorites.
type Change struct {
	Kind  ChangeKind
	ID    string
	Value []byte
}

// Scheduler receives the changes of every mutation. Schedule must not block.
type Scheduler interface {
	Schedule(changes []Change)
}

// Diff compares two library snapshots.
// Ids whose serialization differs or is new become upserts and ids missing from next become deletes.
// The result is sorted by id.
func Diff(prev, next map[string]media.Entry) []Change {
	var changes []Change

	for id, entry := range next {
		value, err := json.Marshal(entry)
		if err != nil {
			log.With(log.Fields{"id": id}).WithError(err).Errorf("entry cannot be serialized, not persisting it")
			continue
		}

		if old, ok := prev[id]; ok {
			if before, err := json.Marshal(old); err == nil && bytes.Equal(before, value) {
				continue
			}
		}

		changes = append(changes, Change{Kind: ChangeUpsert, ID: id, Value: value})
	}

	for id := range prev {
		if _, ok := next[id]; !ok {
			changes = append(changes, Change{Kind: ChangeDelete, ID: id})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].ID < changes[j].ID
	})

	return changes
}
