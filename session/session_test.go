package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/mcmeskajr-prog/trackall/auth"
	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/storage"
	"github.com/mcmeskajr-prog/trackall/storage/bolt"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

// unreliable refuses library upserts while down is set.
type unreliable struct {
	storage.Store
	down *atomic.Bool
}

func (u unreliable) UpsertEntry(ctx context.Context, owner, id string, data []byte) error {
	if u.down.Load() {
		return errors.New("remote unreachable")
	}
	return u.Store.UpsertEntry(ctx, owner, id, data)
}

func TestOwner(t *testing.T) {
	Convey("Given no configured owner", t, func() {
		viper.Set(key.LibraryOwner, "")

		Convey("A generated id is reused", func() {
			first, err := Owner()
			So(err, ShouldBeNil)
			So(first, ShouldHaveLength, 36)

			second, err := Owner()
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
		})
	})

	Convey("A configured owner wins", t, func() {
		viper.Set(key.LibraryOwner, "alice")
		defer viper.Set(key.LibraryOwner, "")

		owner, err := Owner()
		So(err, ShouldBeNil)
		So(owner, ShouldEqual, "alice")
	})
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	frieren := media.Record{ID: "al-anime-154587", Title: "Frieren", Type: media.TypeAnime}

	Convey("Given a session over a local store", t, func() {
		path := filepath.Join(t.TempDir(), "library.db")
		open := func() *Session {
			local, err := bolt.Open(path)
			So(err, ShouldBeNil)
			return New(ctx, "alice", &storage.Fallback{Local: local}, nil, nil)
		}

		s := open()

		Convey("Library changes survive a restart", func() {
			s.Library.Add(frieren, media.StatusInProgress, 9)
			_, err := s.Library.ToggleFavorite(frieren)
			So(err, ShouldBeNil)
			So(s.Close(ctx), ShouldBeNil)

			reopened := open()
			defer reopened.Close(ctx)
			So(reopened.Load(ctx), ShouldBeNil)

			entry, ok := reopened.Library.Get(frieren.ID).Get()
			So(ok, ShouldBeTrue)
			So(entry.UserRating, ShouldEqual, 9)
			So(reopened.Library.Favorites(), ShouldHaveLength, 1)
		})

		Convey("Keys resolve config, then keyring, then storage", func() {
			defer s.Close(ctx)
			defer func() { _ = auth.Delete(auth.TMDB) }()
			viper.Set(key.TMDBKey, "")

			So(s.SetKey(auth.TMDB, "stored"), ShouldBeNil)
			So(s.Keys().TMDB, ShouldEqual, "stored")

			So(auth.Set(auth.TMDB, "ring"), ShouldBeNil)
			So(s.Keys().TMDB, ShouldEqual, "ring")

			viper.Set(key.TMDBKey, "config")
			defer viper.Set(key.TMDBKey, "")
			So(s.Keys().TMDB, ShouldEqual, "config")

			So(s.SetKey("nope", "x"), ShouldNotBeNil)
		})

		Convey("Stored keys are loaded", func() {
			So(s.Store.Set(ctx, storage.KeyProxy, "https://worker.example", "alice"), ShouldBeNil)
			So(s.Load(ctx), ShouldBeNil)
			So(s.Keys().Proxy, ShouldEqual, "https://worker.example")
			So(s.Close(ctx), ShouldBeNil)
		})

		Convey("A library kept as one value is read", func() {
			blob := `{"al-anime-1":{"title":"Old","type":"anime","userStatus":"completo","addedAt":1}}`
			So(s.Store.Set(ctx, storage.KeyLibrary, blob, "alice"), ShouldBeNil)
			So(s.Load(ctx), ShouldBeNil)

			entry, ok := s.Library.Get("al-anime-1").Get()
			So(ok, ShouldBeTrue)
			So(entry.UserStatus, ShouldEqual, media.StatusCompleted)
			So(s.Close(ctx), ShouldBeNil)
		})
	})
}

func TestQueuedWritesAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	frieren := media.Record{ID: "al-anime-154587", Title: "Frieren", Type: media.TypeAnime}

	Convey("Given a primary that stops accepting library writes", t, func() {
		prev := viper.Get(key.SyncMaxAttempts)
		viper.Set(key.SyncMaxAttempts, 10)
		defer viper.Set(key.SyncMaxAttempts, prev)

		dir := t.TempDir()
		var down atomic.Bool
		open := func() *Session {
			primary, err := bolt.Open(filepath.Join(dir, "primary.db"))
			So(err, ShouldBeNil)
			local, err := bolt.Open(filepath.Join(dir, "local.db"))
			So(err, ShouldBeNil)

			s := New(ctx, "bob", &storage.Fallback{Primary: unreliable{primary, &down}, Local: local}, nil, nil)
			So(s.Queue.Load(), ShouldBeNil)
			So(s.Load(ctx), ShouldBeNil)
			return s
		}
		entry := func(s *Session) media.Entry {
			return s.Library.Get(frieren.ID).MustGet()
		}

		s := open()
		So(s.Library.Add(frieren, media.StatusInProgress, 5), ShouldBeTrue)
		So(s.Close(ctx), ShouldBeNil)

		down.Store(true)
		s = open()
		So(entry(s).UserRating, ShouldEqual, 5)
		So(s.Library.SetRating(frieren.ID, 9), ShouldBeTrue)
		So(s.Close(ctx), ShouldBeNil)

		Convey("The pending rating is shown and kept by later edits", func() {
			s := open()
			So(s.Queue.Len(), ShouldBeGreaterThan, 0)
			So(entry(s).UserRating, ShouldEqual, 9)
			So(s.Library.SetStatus(frieren.ID, media.StatusCompleted), ShouldBeTrue)
			So(s.Close(ctx), ShouldBeNil)

			down.Store(false)
			s = open()
			So(s.Close(ctx), ShouldBeNil)

			s = open()
			defer s.Close(ctx)
			So(s.Queue.Len(), ShouldEqual, 0)
			So(entry(s).UserRating, ShouldEqual, 9)
			So(entry(s).UserStatus, ShouldEqual, media.StatusCompleted)
		})
	})
}
