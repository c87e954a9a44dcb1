package fraud_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func clicks(n int, gap time.Duration) []model.PlayerEvent {
	out := make([]model.PlayerEvent, n)
	for i := range out {
		out[i] = model.PlayerEvent{Timestamp: epoch.Add(time.Duration(i) * gap), Type: "click"}
	}
	return out
}

func reward(at time.Duration, v float64) model.PlayerEvent {
	return model.PlayerEvent{Timestamp: epoch.Add(at), Type: model.EventRewardClaim, Value: &v}
}

// rewards returns 100 spaced claims of ordinary size followed by n huge ones.
func rewards(n int) []model.PlayerEvent {
	var out []model.PlayerEvent
	for i := 0; i < 100; i++ {
		out = append(out, reward(time.Duration(i)*time.Second, 10+float64(i%5)))
	}
	for i := 0; i < n; i++ {
		out = append(out, reward(time.Duration(100+i)*time.Second, 1000))
	}
	return out
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	Convey("Given a default scorer", t, func() {
		s := fraud.NewScorer()

		Convey("When the stream is empty", func() {
			a, err := s.Analyze(ctx, nil, &model.PlayerProfile{ID: "p1", Region: "eu", Stats: map[string]float64{"winrate": 1}})

			Convey("Then the score should be zero with no signals", func() {
				So(err, ShouldBeNil)
				So(a.RiskScore, ShouldEqual, 0)
				So(a.Signals, ShouldBeEmpty)
				So(a.Reasons, ShouldBeEmpty)
				So(a.PlayerID, ShouldEqual, "p1")
			})
		})

		Convey("When 15 clicks arrive within 100ms", func() {
			a, err := s.Analyze(ctx, clicks(15, 5*time.Millisecond), nil)

			Convey("Then rapid_actions should be reported", func() {
				So(err, ShouldBeNil)
				So(a.SignalNames(), ShouldResemble, []string{fraud.SignalRapidActions})
				So(a.Signals[0].Value, ShouldBeGreaterThanOrEqualTo, 14)
				So(a.Signals[0].Weight, ShouldEqual, 0.25)
				So(a.Reasons, ShouldResemble, []string{"High number of rapid consecutive actions"})
				So(a.RiskScore, ShouldEqual, 70)
			})
		})

		Convey("When events share a timestamp", func() {
			a, _ := s.Analyze(ctx, clicks(30, 0), nil)

			Convey("Then zero gaps should not count as rapid", func() {
				So(a.Signals, ShouldBeEmpty)
			})
		})

		Convey("When only ten rapid pairs exist", func() {
			a, _ := s.Analyze(ctx, clicks(11, 10*time.Millisecond), nil)

			Convey("Then the threshold should not be crossed", func() {
				So(a.RiskScore, ShouldEqual, 0)
			})
		})

		Convey("When reward outliers are added one by one", func() {
			Convey("Then the risk score should never decrease", func() {
				prev := -1
				for n := 0; n <= 3; n++ {
					a, err := s.Analyze(ctx, rewards(n), nil)
					So(err, ShouldBeNil)
					So(a.RiskScore, ShouldBeGreaterThanOrEqualTo, prev)
					prev = a.RiskScore
				}
				So(prev, ShouldEqual, 21)
			})

			Convey("And a single outlier should be itemized", func() {
				a, _ := s.Analyze(ctx, rewards(1), nil)
				So(a.SignalNames(), ShouldResemble, []string{fraud.SignalRewardOutliers})
				So(a.Signals[0].Value, ShouldEqual, 1)
				So(a.RiskScore, ShouldEqual, 7)
			})
		})

		Convey("When the profile has a suspicious winrate", func() {
			p := &model.PlayerProfile{ID: "w", Rating: 1500, Stats: map[string]float64{model.StatWinrate: 0.98}}
			a, _ := s.Analyze(ctx, clicks(2, time.Second), p)

			Convey("Then winrate_spike should be reported", func() {
				So(a.SignalNames(), ShouldResemble, []string{fraud.SignalWinrateSpike})
				So(a.Signals[0].Value, ShouldEqual, 0.98)
				So(a.RiskScore, ShouldEqual, 4)
			})

			Convey("And a high rating should explain it away", func() {
				p.Rating = 2500
				a, _ := s.Analyze(ctx, clicks(2, time.Second), p)
				So(a.Signals, ShouldBeEmpty)
			})
		})

		Convey("When a regioned player changes region", func() {
			events := []model.PlayerEvent{
				{Timestamp: epoch, Type: "login"},
				{Timestamp: epoch.Add(time.Minute), Type: model.EventRegionChange},
			}

			Convey("Then region_hopping should be reported", func() {
				a, _ := s.Analyze(ctx, events, &model.PlayerProfile{ID: "r", Region: "eu"})
				So(a.SignalNames(), ShouldResemble, []string{fraud.SignalRegionHopping})
				So(a.Reasons, ShouldResemble, []string{"Frequent region change events"})
			})

			Convey("And a player without a region should not be flagged", func() {
				a, _ := s.Analyze(ctx, events, &model.PlayerProfile{ID: "r"})
				So(a.Signals, ShouldBeEmpty)
			})
		})

		Convey("When every signal fires", func() {
			events := append(clicks(200, time.Millisecond), model.PlayerEvent{Timestamp: epoch.Add(time.Second), Type: model.EventRegionChange})
			p := &model.PlayerProfile{ID: "x", Region: "na", Rating: 1000, Stats: map[string]float64{model.StatWinrate: 1}}
			a, _ := s.Analyze(ctx, events, p)

			Convey("Then the score should be capped at 100", func() {
				So(a.RiskScore, ShouldEqual, 100)
				So(a.SignalNames(), ShouldResemble, []string{
					fraud.SignalRapidActions, fraud.SignalWinrateSpike, fraud.SignalRegionHopping,
				})
			})
		})

		Convey("When the stream is too large", func() {
			small := fraud.NewScorer(fraud.WithConfig(func() fraud.Config {
				c := fraud.DefaultConfig()
				c.MaxEvents = 5
				return c
			}()))
			_, err := small.Analyze(ctx, clicks(6, time.Second), nil)

			Convey("Then ErrTooManyEvents should be returned", func() {
				So(errors.Is(err, fraud.ErrTooManyEvents), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.Analyze(cctx, clicks(3, time.Second), nil)

			Convey("Then the context error should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
