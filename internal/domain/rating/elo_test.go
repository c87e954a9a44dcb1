package rating_test

import (
	"math"
	"testing"

	"github.com/okian/arena/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestElo(t *testing.T) {
	Convey("Given a default Elo updater", t, func() {
		e := rating.NewElo()

		Convey("Then the k-factor should be the default", func() {
			So(e.KFactor(), ShouldEqual, rating.DefaultKFactor)
		})

		Convey("When both players share a rating", func() {
			Convey("Then the expected score should be one half", func() {
				So(e.ExpectedScore(1500, 1500), ShouldEqual, 0.5)
			})

			Convey("And a win should add half the k-factor", func() {
				So(e.Update(1200, 1200, 1), ShouldEqual, 1212)
				So(e.Update(1200, 1200, 0), ShouldEqual, 1188)
				So(e.Update(1200, 1200, 0.5), ShouldEqual, 1200)
			})
		})

		Convey("When ratings differ widely", func() {
			Convey("Then the expectation should stay strictly inside (0,1)", func() {
				for _, pair := range [][2]float64{{0, 3000}, {3000, 0}, {100, 2900}, {1200, 1201}} {
					s := e.ExpectedScore(pair[0], pair[1])
					So(s, ShouldBeGreaterThan, 0)
					So(s, ShouldBeLessThan, 1)
				}
			})

			Convey("And expectations of both sides should sum to one", func() {
				So(e.ExpectedScore(1400, 1800)+e.ExpectedScore(1800, 1400), ShouldAlmostEqual, 1, 1e-12)
			})
		})

		Convey("When applying a result to both sides", func() {
			Convey("Then the gain of one should be the loss of the other within rounding", func() {
				ratings := []float64{800, 1200, 1234, 1500, 1999, 2400}
				for _, rA := range ratings {
					for _, rB := range ratings {
						for _, sA := range []float64{0, 0.5, 1} {
							gainA := e.Update(rA, rB, sA) - rA
							gainB := e.Update(rB, rA, 1-sA) - rB
							So(math.Abs(gainA+gainB), ShouldBeLessThanOrEqualTo, 1)
						}
					}
				}
			})
		})
	})

	Convey("Given a custom k-factor", t, func() {
		e := rating.NewElo(rating.WithKFactor(32))

		Convey("Then a win between equals should add 16", func() {
			So(e.Update(1000, 1000, 1), ShouldEqual, 1016)
		})

		Convey("And a non-positive k-factor should be ignored", func() {
			So(rating.NewElo(rating.WithKFactor(-1)).KFactor(), ShouldEqual, rating.DefaultKFactor)
		})
	})
}

func TestValidOutcome(t *testing.T) {
	Convey("Given candidate outcomes", t, func() {
		So(rating.ValidOutcome(0), ShouldBeTrue)
		So(rating.ValidOutcome(0.5), ShouldBeTrue)
		So(rating.ValidOutcome(1), ShouldBeTrue)
		So(rating.ValidOutcome(0.7), ShouldBeFalse)
		So(rating.ValidOutcome(-1), ShouldBeFalse)
	})
}
