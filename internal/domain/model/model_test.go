package model_test

import (
	"testing"

	model "github.com/okian/arena/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestPlayStyle(t *testing.T) {
	convey.Convey("Given the play styles", t, func() {
		convey.Convey("Then they should encode onto -1/0/+1", func() {
			convey.So(model.StyleAggressive.Encode(), convey.ShouldEqual, 1)
			convey.So(model.StyleDefensive.Encode(), convey.ShouldEqual, -1)
			convey.So(model.StyleBalanced.Encode(), convey.ShouldEqual, 0)
			convey.So(model.PlayStyle("").Encode(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then only the closed set should be valid", func() {
			convey.So(model.StyleAggressive.Valid(), convey.ShouldBeTrue)
			convey.So(model.PlayStyle("").Valid(), convey.ShouldBeTrue)
			convey.So(model.PlayStyle("chaotic").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestPlayerProfileClone(t *testing.T) {
	convey.Convey("Given a profile with stats and latency", t, func() {
		latency := 40.0
		p := model.PlayerProfile{
			ID:        "p1",
			Rating:    1500,
			Skill:     0.7,
			LatencyMs: &latency,
			Stats:     map[string]float64{model.StatWinrate: 0.6},
		}

		convey.Convey("When the clone is mutated", func() {
			c := p.Clone()
			c.Stats[model.StatWinrate] = 0.99
			*c.LatencyMs = 250

			convey.Convey("Then the original should be untouched", func() {
				convey.So(p.Stats[model.StatWinrate], convey.ShouldEqual, 0.6)
				convey.So(*p.LatencyMs, convey.ShouldEqual, 40.0)
			})
		})

		convey.Convey("When reading stats", func() {
			w, ok := p.Stat(model.StatWinrate)
			_, missing := p.Stat(model.StatAccuracy)

			convey.Convey("Then presence should be reported", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(w, convey.ShouldEqual, 0.6)
				convey.So(missing, convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given a bare profile", t, func() {
		c := model.PlayerProfile{ID: "p2"}.Clone()

		convey.Convey("Then the clone keeps nil optionals", func() {
			convey.So(c.LatencyMs, convey.ShouldBeNil)
			convey.So(c.Stats, convey.ShouldBeNil)
		})
	})
}

func TestFraudAnalysisSignalNames(t *testing.T) {
	convey.Convey("Given an analysis with two signals", t, func() {
		a := model.FraudAnalysis{Signals: []model.FraudSignal{
			{Name: "rapid_actions"}, {Name: "region_hopping"},
		}}

		convey.Convey("Then names should be listed in order", func() {
			convey.So(a.SignalNames(), convey.ShouldResemble, []string{"rapid_actions", "region_hopping"})
		})
	})
}
