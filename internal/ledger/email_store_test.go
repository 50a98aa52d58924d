package ledger_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/ledger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryEmailStore(t *testing.T) {
	Convey("Given a memory email store with a 10 minute TTL", t, func() {
		store := ledger.NewMemoryEmailStore(10 * time.Minute)
		now := at("2026-08-29", "10:00:00")

		Convey("When claiming a fresh email", func() {
			fresh, err := store.ClaimEmail("test@example.com", now)
			So(err, ShouldBeNil)
			So(fresh, ShouldBeTrue)

			Convey("Then a repeat inside the TTL is rejected", func() {
				fresh, err := store.ClaimEmail("test@example.com", now.Add(5*time.Minute))
				So(err, ShouldBeNil)
				So(fresh, ShouldBeFalse)
			})

			Convey("Then the email frees up after the TTL", func() {
				fresh, err := store.ClaimEmail("test@example.com", now.Add(11*time.Minute))
				So(err, ShouldBeNil)
				So(fresh, ShouldBeTrue)
			})

			Convey("Then other emails are unaffected", func() {
				fresh, err := store.ClaimEmail("other@example.com", now)
				So(err, ShouldBeNil)
				So(fresh, ShouldBeTrue)
			})
		})
	})
}

func TestFileEmailStore(t *testing.T) {
	Convey("Given a file-backed email store", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "emails.txt")
		now := at("2026-08-29", "10:00:00")

		store, err := ledger.OpenFileEmailStore(path)
		So(err, ShouldBeNil)
		So(store.Count(), ShouldEqual, 0)

		Convey("When claiming emails", func() {
			fresh, err := store.ClaimEmail("a@example.com", now)
			So(err, ShouldBeNil)
			So(fresh, ShouldBeTrue)

			fresh, err = store.ClaimEmail("b@example.com", now)
			So(err, ShouldBeNil)
			So(fresh, ShouldBeTrue)

			fresh, err = store.ClaimEmail("a@example.com", now)
			So(err, ShouldBeNil)
			So(fresh, ShouldBeFalse)
			So(store.Count(), ShouldEqual, 2)

			Convey("Then the file holds one email per line", func() {
				So(store.Close(), ShouldBeNil)
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, "a@example.com\nb@example.com\n")
			})

			Convey("Then reopening the file keeps the dedupe set", func() {
				So(store.Close(), ShouldBeNil)

				reopened, err := ledger.OpenFileEmailStore(path)
				So(err, ShouldBeNil)
				So(reopened.Count(), ShouldEqual, 2)

				fresh, err := reopened.ClaimEmail("a@example.com", now)
				So(err, ShouldBeNil)
				So(fresh, ShouldBeFalse)

				fresh, err = reopened.ClaimEmail("c@example.com", now)
				So(err, ShouldBeNil)
				So(fresh, ShouldBeTrue)
				So(reopened.Close(), ShouldBeNil)
			})
		})

		Convey("When the path cannot be created", func() {
			_, err := ledger.OpenFileEmailStore(filepath.Join(dir, "missing", "emails.txt"))
			So(err, ShouldNotBeNil)
		})
	})
}
