package config

import (
	"os"
	"testing"

	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.SearchCacheSize), ShouldEqual, 50)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("tmdb.language"), ShouldEqual, "tmdb_language")
		})
	})
}

func TestLoadDotenv(t *testing.T) {
	Convey("Given a dotenv file", t, func() {
		So(filesystem.API().WriteFile("/tmp/test.env", []byte("TRACKALL_DOTENV_ONE=first\nTRACKALL_DOTENV_TWO=second\n"), 0644), ShouldBeNil)
		So(os.Setenv("TRACKALL_DOTENV_TWO", "real"), ShouldBeNil)
		defer os.Unsetenv("TRACKALL_DOTENV_ONE")
		defer os.Unsetenv("TRACKALL_DOTENV_TWO")

		So(loadDotenv("/tmp/missing.env", "/tmp/test.env"), ShouldBeNil)

		Convey("It exports unset variables", func() {
			So(os.Getenv("TRACKALL_DOTENV_ONE"), ShouldEqual, "first")
		})

		Convey("It keeps variables from the real environment", func() {
			So(os.Getenv("TRACKALL_DOTENV_TWO"), ShouldEqual, "real")
		})
	})
}

func TestFieldEnv(t *testing.T) {
	Convey("Field.Env prefixes with the application name", t, func() {
		f := Default[key.TMDBKey]
		So(f.Env(), ShouldEqual, "TRACKALL_TMDB_KEY")
	})
}
