package wheel_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/wheel"
	. "github.com/smartystreets/goconvey/convey"
)

// scriptedRNG 返回预先写好的随机数序列，用完后归零。
type scriptedRNG struct {
	ints   []int
	floats []float64
}

func (s *scriptedRNG) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRNG) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func TestNewEngine(t *testing.T) {
	Convey("Given engine construction parameters", t, func() {
		Convey("When the parameters are valid", func() {
			e, err := wheel.NewEngine(6, 4, 7, 0.35)
			So(err, ShouldBeNil)
			So(e.SegmentCount(), ShouldEqual, 6)
			So(e.SegmentAngle(), ShouldAlmostEqual, wheel.Tau/6)
		})

		Convey("When the segment count is not positive", func() {
			_, err := wheel.NewEngine(0, 4, 7, 0.35)
			So(err, ShouldNotBeNil)
		})

		Convey("When the turn range is inverted", func() {
			_, err := wheel.NewEngine(6, 7, 4, 0.35)
			So(err, ShouldNotBeNil)
		})

		Convey("When the jitter reaches half a segment", func() {
			_, err := wheel.NewEngine(6, 4, 7, 0.5)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given arbitrary angles", t, func() {
		Convey("Then Normalize should map them into [0, 2π)", func() {
			So(wheel.Normalize(0), ShouldAlmostEqual, 0)
			So(wheel.Normalize(wheel.Tau), ShouldAlmostEqual, 0)
			So(wheel.Normalize(-math.Pi/2), ShouldAlmostEqual, 3*math.Pi/2)
			So(wheel.Normalize(5*wheel.Tau+1), ShouldAlmostEqual, 1)
			So(wheel.Normalize(-5*wheel.Tau-1), ShouldAlmostEqual, wheel.Tau-1)
		})
	})
}

func TestEncodeDecode(t *testing.T) {
	Convey("Given an engine without jitter", t, func() {
		e, err := wheel.NewEngine(6, 4, 7, 0)
		So(err, ShouldBeNil)

		Convey("Then Decode is the inverse of Encode for every segment", func() {
			for target := 0; target < 6; target++ {
				rng := &scriptedRNG{ints: []int{2}, floats: []float64{0.5}}
				final := e.Encode(target, 0, rng)
				So(e.Decode(final), ShouldEqual, target)
			}
		})

		Convey("Then the rotation only ever moves forward", func() {
			current := 0.0
			rng := rand.New(rand.NewPCG(7, 0))
			for i := 0; i < 200; i++ {
				next := e.Encode(i%6, current, rng)
				So(next, ShouldBeGreaterThan, current)
				current = next
			}
		})

		Convey("Then the added full turns stay inside the configured range", func() {
			rng := &scriptedRNG{ints: []int{0}, floats: []float64{0.5}}
			low := e.Encode(3, 0, rng)
			rng = &scriptedRNG{ints: []int{3}, floats: []float64{0.5}}
			high := e.Encode(3, 0, rng)
			So(high-low, ShouldAlmostEqual, 3*wheel.Tau)
			So(low, ShouldBeGreaterThanOrEqualTo, 4*wheel.Tau)
			So(high, ShouldBeLessThan, (7+1)*wheel.Tau)
		})

		Convey("Then equivalent rotations modulo 2π decode identically", func() {
			rng := &scriptedRNG{ints: []int{1}, floats: []float64{0.5}}
			final := e.Encode(4, 0, rng)
			So(e.Decode(final), ShouldEqual, e.Decode(final+3*wheel.Tau))
			So(e.Decode(final), ShouldEqual, e.Decode(final-10*wheel.Tau))
		})
	})

	Convey("Given an engine with jitter", t, func() {
		e, err := wheel.NewEngine(6, 4, 7, 0.35)
		So(err, ShouldBeNil)

		Convey("Then the decoded segment is the target or one of its neighbours", func() {
			rng := rand.New(rand.NewPCG(42, 1))
			for i := 0; i < 500; i++ {
				target := i % 6
				final := e.Encode(target, float64(i)*1.3, rng)
				got := e.Decode(final)
				diff := (got - target + 6) % 6
				// 抖动小于半个扇区，最多偏到相邻扇区
				So(diff == 0 || diff == 1 || diff == 5, ShouldBeTrue)
			}
		})

		Convey("Then extreme jitter draws stay within one segment of the target", func() {
			rng := &scriptedRNG{ints: []int{0}, floats: []float64{1.0}}
			final := e.Encode(2, 0, rng)
			got := e.Decode(final)
			diff := (got - 2 + 6) % 6
			So(diff == 0 || diff == 1 || diff == 5, ShouldBeTrue)
		})
	})
}

func TestProgress(t *testing.T) {
	Convey("Given an ease-out animation from 0 to 10", t, func() {
		Convey("Then the boundaries are exact", func() {
			So(wheel.Progress(0, 5000, 0, 10), ShouldAlmostEqual, 0)
			So(wheel.Progress(5000, 5000, 0, 10), ShouldAlmostEqual, 10)
		})

		Convey("Then elapsed time outside the window is clamped", func() {
			So(wheel.Progress(-100, 5000, 0, 10), ShouldAlmostEqual, 0)
			So(wheel.Progress(9000, 5000, 0, 10), ShouldAlmostEqual, 10)
		})

		Convey("Then the curve decelerates towards the end", func() {
			first := wheel.Progress(1250, 5000, 0, 10) - wheel.Progress(0, 5000, 0, 10)
			last := wheel.Progress(5000, 5000, 0, 10) - wheel.Progress(3750, 5000, 0, 10)
			So(first, ShouldBeGreaterThan, last)
		})

		Convey("Then a non-positive duration snaps to the final rotation", func() {
			So(wheel.Progress(0, 0, 3, 10), ShouldAlmostEqual, 10)
		})
	})
}
