package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/arena/internal/adapters/http/api"
	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func clicks(n int, gap time.Duration) []model.PlayerEvent {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PlayerEvent, n)
	for i := range out {
		out[i] = model.PlayerEvent{Timestamp: base.Add(time.Duration(i) * gap), Type: "click"}
	}
	return out
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
			service.WithSeed(7),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		for _, id := range []string{"alice", "bob", "carol"} {
			So(svc.RegisterProfile(ctx, model.PlayerProfile{ID: id, Rating: 1200, Skill: 0.5}), ShouldBeNil)
		}

		Convey("When match results flow through the queue", func() {
			results := []model.MatchResult{
				{MatchID: "m1", PlayerA: "alice", PlayerB: "bob", ResultA: model.OutcomeWin},
				{MatchID: "m2", PlayerA: "alice", PlayerB: "carol", ResultA: model.OutcomeWin},
				{MatchID: "m3", PlayerA: "bob", PlayerB: "carol", ResultA: model.OutcomeDraw},
			}
			for _, r := range results {
				So(svc.SeenAndRecord(ctx, r.MatchID), ShouldBeFalse)
				So(svc.EnqueueResult(ctx, r), ShouldBeTrue)
			}

			Convey("Then the leaderboard should converge", func() {
				So(waitFor(func() bool {
					top, err := svc.TopN(ctx, 1)
					return err == nil && len(top) == 1 && top[0].PlayerID == "alice" && top[0].Rating > 1220
				}), ShouldBeTrue)

				entry, err := svc.Rank(ctx, "alice")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
			})

			Convey("And a repeated match id should be rejected", func() {
				So(svc.SeenAndRecord(ctx, "m1"), ShouldBeTrue)
			})

			Convey("And stopping should drain what is queued", func() {
				svc.Stop()
				a, err := svc.Profile(ctx, "alice")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(a.ID, ShouldBeEmpty)
			})
		})

		Convey("When analyzing a bot-like stream", func() {
			analysis, err := svc.AnalyzeFraud(ctx, "alice", clicks(15, 5*time.Millisecond))

			Convey("Then the rapid-actions signal should fire", func() {
				So(err, ShouldBeNil)
				So(analysis.ID, ShouldNotBeEmpty)
				So(analysis.PlayerID, ShouldEqual, "alice")
				So(analysis.RiskScore, ShouldEqual, 70)
				So(analysis.SignalNames(), ShouldContain, fraud.SignalRapidActions)
				So(analysis.AnalyzedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When analyzing an unknown player", func() {
			analysis, err := svc.AnalyzeFraud(ctx, "stranger", nil)

			Convey("Then it should score zero without failing", func() {
				So(err, ShouldBeNil)
				So(analysis.RiskScore, ShouldEqual, 0)
				So(analysis.Signals, ShouldBeEmpty)
			})
		})

		Convey("When analyzing a batch", func() {
			reqs := make([]model.FraudRequest, 10)
			for i := range reqs {
				reqs[i] = model.FraudRequest{PlayerID: fmt.Sprintf("p%d", i)}
				if i%2 == 0 {
					reqs[i].Events = clicks(15, 5*time.Millisecond)
				}
			}
			out, err := svc.AnalyzeFraudBatch(ctx, reqs)

			Convey("Then results should keep the request order", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, len(reqs))
				for i, a := range out {
					So(a.PlayerID, ShouldEqual, reqs[i].PlayerID)
					if i%2 == 0 {
						So(a.RiskScore, ShouldEqual, 70)
					} else {
						So(a.RiskScore, ShouldEqual, 0)
					}
				}
			})
		})

		Convey("When a batch entry is too large", func() {
			huge := clicks(fraud.DefaultConfig().MaxEvents+1, time.Second)
			_, err := svc.AnalyzeFraudBatch(ctx, []model.FraudRequest{{PlayerID: "a"}, {PlayerID: "b", Events: huge}})

			Convey("Then the whole batch should fail", func() {
				So(errors.Is(err, fraud.ErrTooManyEvents), ShouldBeTrue)
			})
		})
	})
}

func TestResultForUnregisteredPlayers(t *testing.T) {
	Convey("Given a started service behind the HTTP API", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		router := api.NewServer(svc).Router()

		post := func() int {
			req := httptest.NewRequest(http.MethodPost, "/matches/results",
				strings.NewReader(`{"match_id":"m1","player_a":"a","player_b":"b","result_a":1}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w.Code
		}

		Convey("When a result names players that are not registered", func() {
			code := post()

			Convey("Then it should be not found and count once the players exist", func() {
				So(code, ShouldEqual, http.StatusNotFound)
				So(svc.Size(), ShouldEqual, 0)

				So(svc.RegisterProfile(ctx, model.PlayerProfile{ID: "a", Rating: 1200, Skill: 0.5}), ShouldBeNil)
				So(svc.RegisterProfile(ctx, model.PlayerProfile{ID: "b", Rating: 1200, Skill: 0.5}), ShouldBeNil)
				So(post(), ShouldEqual, http.StatusAccepted)
				So(waitFor(func() bool {
					a, err := svc.Profile(ctx, "a")
					return err == nil && a.Rating == 1212
				}), ShouldBeTrue)
				So(post(), ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestBackgroundLoops(t *testing.T) {
	Convey("Given a started service with enough profiles to cluster", t, func() {
		svc := service.New(service.WithWorkerCount(1), service.WithSeed(11))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		for i := 0; i < 20; i++ {
			So(svc.RegisterProfile(ctx, model.PlayerProfile{ID: fmt.Sprintf("p%02d", i), Rating: 1000 + float64(i)*30, Skill: 0.5}), ShouldBeNil)
		}

		Convey("When the rebuild loop runs", func() {
			loop := service.NewRebuildLoop(svc, 10*time.Millisecond)
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- loop.Serve(runCtx) }()

			Convey("Then centroids should appear and cancel should stop it", func() {
				So(waitFor(func() bool {
					cents, err := svc.Centroids(ctx)
					return err == nil && len(cents) > 0
				}), ShouldBeTrue)
				cancel()
				So(errors.Is(<-done, context.Canceled), ShouldBeTrue)
				So(loop.String(), ShouldEqual, "cluster-rebuild")
			})
		})

		Convey("When the metrics loop runs", func() {
			loop := service.NewMetricsLoop(svc, 5*time.Millisecond)
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
			defer cancel()

			Convey("Then it should return once its context ends", func() {
				So(errors.Is(loop.Serve(runCtx), context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}
