package query

import (
	"testing"

	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuery(t *testing.T) {
	Convey("Given query history", t, func() {
		viper.Set(key.SearchShowQuerySuggestions, true)

		So(Remember("Bleach", 1), ShouldBeNil)
		So(Remember("blue lock", 10), ShouldBeNil)
		So(Remember("   ", 5), ShouldBeNil)

		Convey("Suggestions are sorted by rank", func() {
			s := SuggestMany("bl")
			So(len(s), ShouldBeGreaterThanOrEqualTo, 2)
			So(s[0], ShouldEqual, "blue lock")
			So(s, ShouldContain, "bleach")
		})

		Convey("Remembering again refreshes suggestions", func() {
			_ = SuggestMany("ble")
			So(Remember("bleach", 100), ShouldBeNil)
			So(Suggest("bl").OrEmpty(), ShouldEqual, "bleach")
		})

		Convey("Nothing is suggested when disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			So(SuggestMany("bl"), ShouldBeEmpty)
			So(Suggest("bl").IsPresent(), ShouldBeFalse)
		})

		Convey("It sanitizes input", func() {
			So(sanitize("  NARUTO  "), ShouldEqual, "naruto")
		})
	})
}
