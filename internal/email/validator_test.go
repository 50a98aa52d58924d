package email_test

import (
	"strings"
	"testing"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/email"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/tld"
	. "github.com/smartystreets/goconvey/convey"
)

func loadedTlds() *tld.Set {
	s := tld.NewSet()
	if _, ok := s.Replace([]string{"com", "de", "org", "uk", "co", "io"}); !ok {
		panic("failed to load tld fixture")
	}
	return s
}

func TestValidator_Accepts(t *testing.T) {
	Convey("Given a validator with a loaded TLD set", t, func() {
		v := email.NewValidator(loadedTlds())

		Convey("When validating well-formed addresses", func() {
			cases := []string{
				"test@example.com",
				"first.last+tag@sub.example.co.uk",
				"a@bc.de",
				"user_name@my-domain.org",
				"o'brien@example.com",
			}
			for _, input := range cases {
				result := v.Validate(input)
				So(result.OK, ShouldBeTrue)
				So(result.Kind, ShouldEqual, email.KindNone)
				So(result.Message, ShouldBeEmpty)
			}
		})

		Convey("When the input carries surrounding whitespace and upper case", func() {
			result := v.Validate("  Test@Example.COM  ")

			Convey("Then it should be trimmed and lowercased", func() {
				So(result.OK, ShouldBeTrue)
				So(result.Normalized, ShouldEqual, "test@example.com")
			})
		})
	})
}

func TestValidator_Rejects(t *testing.T) {
	Convey("Given a validator with a loaded TLD set", t, func() {
		v := email.NewValidator(loadedTlds())

		check := func(input string, kind email.ErrorKind) {
			result := v.Validate(input)
			So(result.OK, ShouldBeFalse)
			So(result.Kind, ShouldEqual, kind)
			So(result.Message, ShouldNotBeEmpty)
		}

		Convey("Then each rule should fire with its own reason", func() {
			check("", email.KindEmpty)
			check("   ", email.KindEmpty)
			check("a@b.c", email.KindTooShort)
			check(strings.Repeat("a", 250)+"@b.com", email.KindTooLong)
			check("jürgen@example.com", email.KindNonASCII)
			check("john doe@example.com", email.KindWhitespace)
			check("johnexample.com", email.KindAtCount)
			check("john@doe@example.com", email.KindAtCount)
			check("@example.com", email.KindIncomplete)
			check("johnny@", email.KindIncomplete)
			check(".john@example.com", email.KindLocalDot)
			check("john.@example.com", email.KindLocalDot)
			check("john..doe@example.com", email.KindDoubleDot)
			check("john@example..com", email.KindDoubleDot)
			check(`jo(hn)@example.com`, email.KindLocalCharset)
			check("john@-example.com", email.KindDomainShape)
			check("john@example.com-", email.KindDomainShape)
			check("john@.example.com", email.KindDomainShape)
			check("john@exam_ple.com", email.KindDomainCharset)
			check("john@localhost", email.KindNoDot)
			check("johnny@example.x", email.KindTldTooShort)
			check("test@email.zz", email.KindTldInvalid)
			check("john@exa-.mple.zz", email.KindTldInvalid) // TLD检查先于label形态检查
			check("john@exa-.mple.com", email.KindLabelShape)
		})

		Convey("When a label inside the domain is malformed but the TLD is valid", func() {
			check("john@foo-.example.com", email.KindLabelShape)
		})
	})
}

func TestValidator_TldUnavailable(t *testing.T) {
	Convey("Given a validator whose TLD set never loaded", t, func() {
		v := email.NewValidator(tld.NewSet())

		Convey("When validating a syntactically fine address", func() {
			result := v.Validate("test@example.com")

			Convey("Then it should report unavailable, not invalid", func() {
				So(result.OK, ShouldBeFalse)
				So(result.Kind, ShouldEqual, email.KindTldUnavailable)
			})
		})

		Convey("When the address fails an earlier syntactic rule", func() {
			result := v.Validate("john..doe@example.com")

			Convey("Then the syntax error wins over availability", func() {
				So(result.Kind, ShouldEqual, email.KindDoubleDot)
			})
		})
	})
}
