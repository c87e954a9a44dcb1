package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/arena/internal/config"
	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/matchmaking"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.RebuildInterval(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the domain policies should match their defaults", func() {
			convey.So(cfg.Engine(), convey.ShouldResemble, matchmaking.DefaultConfig())
			convey.So(cfg.Fraud(), convey.ShouldResemble, fraud.DefaultConfig())
		})

		convey.Convey("When a setting is out of range", func() {
			cfg.ClusterIterations = 500
			cfg.MatchMaxCandidatesLimit = 1
			err := cfg.Validate()

			convey.Convey("Then validation should name the keys", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "cluster_iterations")
				convey.So(err.Error(), convey.ShouldContainSubstring, "match_max_candidates_limit")
			})
		})
	})
}
