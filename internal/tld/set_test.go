package tld_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/tld"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSet_Replace(t *testing.T) {
	Convey("Given an empty TLD set", t, func() {
		s := tld.NewSet()
		So(s.Available(), ShouldBeFalse)
		So(s.Contains("com"), ShouldBeFalse)

		Convey("When replacing with a mixed list", func() {
			count, ok := s.Replace([]string{" COM ", "de", "xn--p1ai", "x", "123", "bad_tld", ""})

			Convey("Then only well-formed tokens should survive", func() {
				So(ok, ShouldBeTrue)
				So(count, ShouldEqual, 3)
				So(s.Available(), ShouldBeTrue)
				So(s.Contains("com"), ShouldBeTrue)
				So(s.Contains("de"), ShouldBeTrue)
				So(s.Contains("xn--p1ai"), ShouldBeTrue)
				So(s.Contains("x"), ShouldBeFalse)
				So(s.Contains("123"), ShouldBeFalse)
			})
		})

		Convey("When the replacement list cleans down to nothing", func() {
			s.Replace([]string{"com", "org"})
			count, ok := s.Replace([]string{"!", "", "a"})

			Convey("Then the old set should be kept", func() {
				So(ok, ShouldBeFalse)
				So(count, ShouldEqual, 0)
				So(s.Contains("com"), ShouldBeTrue)
				So(s.Count(), ShouldEqual, 2)
			})
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	Convey("Given a TLD list on disk", t, func() {
		dir := t.TempDir()
		s := tld.NewSet()

		Convey("When the file is a valid JSON array", func() {
			path := filepath.Join(dir, "tlds.json")
			So(os.WriteFile(path, []byte(`["com","de","org"]`), 0o644), ShouldBeNil)

			err := tld.LoadFromFile(s, path)
			So(err, ShouldBeNil)
			So(s.Count(), ShouldEqual, 3)
		})

		Convey("When the file is missing", func() {
			err := tld.LoadFromFile(s, filepath.Join(dir, "nope.json"))
			So(err, ShouldNotBeNil)
			So(s.Available(), ShouldBeFalse)
		})

		Convey("When the file is not a JSON array", func() {
			path := filepath.Join(dir, "broken.json")
			So(os.WriteFile(path, []byte(`{"com": true}`), 0o644), ShouldBeNil)

			err := tld.LoadFromFile(s, path)
			So(err, ShouldNotBeNil)
			So(s.Available(), ShouldBeFalse)
		})

		Convey("When the array cleans down to nothing", func() {
			path := filepath.Join(dir, "empty.json")
			So(os.WriteFile(path, []byte(`["", "?"]`), 0o644), ShouldBeNil)

			err := tld.LoadFromFile(s, path)
			So(err, ShouldNotBeNil)
		})
	})
}
