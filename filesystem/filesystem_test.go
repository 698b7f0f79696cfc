package filesystem

import (
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestWriteAtomic(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		SetMemMapFs()

		Convey("WriteAtomic creates parent directories and replaces content", func() {
			So(WriteAtomic("/data/nested/file.json", []byte("one")), ShouldBeNil)
			So(WriteAtomic("/data/nested/file.json", []byte("two")), ShouldBeNil)

			content := lo.Must(API().ReadFile("/data/nested/file.json"))
			So(string(content), ShouldEqual, "two")

			tmpExists := lo.Must(API().Exists("/data/nested/file.json.tmp"))
			So(tmpExists, ShouldBeFalse)
		})
	})
}
