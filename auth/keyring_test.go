package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestKeyring(t *testing.T) {
	keyring.MockInit()

	Convey("Given a mocked keyring", t, func() {
		Convey("A stored secret can be read back", func() {
			So(Set(TMDB, "abc"), ShouldBeNil)
			So(Get(TMDB).OrEmpty(), ShouldEqual, "abc")
		})

		Convey("A missing secret is None", func() {
			So(Get(Proxy).IsPresent(), ShouldBeFalse)
		})

		Convey("Deleting twice is fine", func() {
			So(Set(Proxy, "https://worker.example"), ShouldBeNil)
			So(Delete(Proxy), ShouldBeNil)
			So(Delete(Proxy), ShouldBeNil)
			So(Get(Proxy).IsPresent(), ShouldBeFalse)
		})
	})
}
