package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/arena/internal/config"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func setEnv(kv map[string]string) func() {
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	return func() {
		for k := range kv {
			_ = os.Unsetenv(k)
		}
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			defer setEnv(map[string]string{
				"ARENA_ADDR":         ":8080",
				"ARENA_QUEUE_SIZE":   "1000",
				"ARENA_WORKER_COUNT": "4",
				"ARENA_CLUSTER_SEED": "9",
			})()

			convey.Convey("Then configuration should drive the service", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")

				svc := newService(cfg, logger.Get())
				stats := svc.GetStats()
				convey.So(stats["queueSize"], convey.ShouldEqual, 1000)
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a metrics manager should be creatable on a fresh registry", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestHTTPServerWiring(t *testing.T) {
	convey.Convey("Given a started service behind the HTTP router", t, func() {
		cfg := config.New()
		cfg.WorkerCount = 1
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newHTTPServer(cfg, svc)

		convey.Convey("Then the server should carry the configured timeouts", func() {
			convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
			convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
			convey.So(srv.IdleTimeout, convey.ShouldEqual, idleTimeout)
			convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
		})

		convey.Convey("Then business and docs routes should share the router", func() {
			for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml", "/clusters"} {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestSupervisorTree(t *testing.T) {
	convey.Convey("Given a supervisor tree on a free port", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := ln.Addr().String()
		_ = ln.Close()

		cfg := config.New()
		cfg.Addr = addr
		cfg.WorkerCount = 1
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		root := buildSupervisor(cfg, svc, newHTTPServer(cfg, svc), logger.Get())
		ctx, cancel := context.WithCancel(context.Background())
		errCh := root.ServeBackground(ctx)

		convey.Convey("Then the HTTP server should answer and cancel should stop the tree", func() {
			var resp *http.Response
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				resp, err = http.Get("http://" + addr + "/stats")
				if err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			cancel()
			select {
			case err := <-errCh:
				convey.So(err == nil || errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			case <-time.After(5 * time.Second):
				convey.So("supervisor still running", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestHTTPService(t *testing.T) {
	convey.Convey("Given an HTTP service on an occupied port", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = ln.Close() }()

		svc := &httpService{
			server:          &http.Server{Addr: ln.Addr().String(), ReadHeaderTimeout: readHeaderTimeout},
			shutdownTimeout: time.Second,
		}

		convey.Convey("Then Serve should report the listen failure", func() {
			err := svc.Serve(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(svc.String(), convey.ShouldEqual, "http-server")
		})
	})
}
