package cmd

import (
	"context"
	"event-ticket/common"
	"event-ticket/common/metrics"
	inboundCron "event-ticket/inbound/cron"
	inboundHttp "event-ticket/inbound/http"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/go-playground/validator/v10"
	"log"
	"log/slog"
	"net/http"
	"os"
	"runtime/pprof"
	"time"
)

func runHttpServerCmd(ctx context.Context) {
	cfg := newCfg("env")

	if cfg.GetString("env") == "dev" {
		cpu, err := os.Create("http-cpu.prof")
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer cpu.Close()

		err = pprof.StartCPUProfile(cpu)
		if err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	shutdownTracer := newTracer(ctx, cfg)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("failed to shutdown tracer", slog.Any("error", err))
		}
	}()

	validate := validator.New()

	db := newDb(cfg)
	defer db.Close()

	cacheClient := newRedis(cfg)
	defer cacheClient.Close()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	createStreamWorkQueue(ctx, js)

	querier := sqlgen.New(db)
	authn := inboundHttp.Authenticator{Verifier: newVerifier(cfg)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		slog.DebugContext(r.Context(), "health check")
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", metrics.Handler())

	timeoutMiddleware := inboundHttp.TimeoutMiddleware(20 * time.Second)

	inboundHttp.RegisterEventHttp(mux)
	inboundHttp.RegisterProfileHttp(mux, authn, querier, validate)
	inboundHttp.RegisterRegistrationHttp(mux, cfg, authn, querier, cacheClient, js, validate)
	inboundHttp.RegisterPaymentHttp(mux, cfg, authn, db, querier, cacheClient, js, newGateway(cfg), validate, common.NewAmountPrinter())
	inboundHttp.RegisterCheckInHttp(mux, authn, querier, js, validate)

	eventCron := &inboundCron.EventCron{
		Cfg:     cfg,
		Cache:   cacheClient,
		Querier: querier,
	}

	err := eventCron.InitCapacityCache(ctx)
	if err != nil {
		log.Fatalln("unable to init capacity cache", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.GetInt("server.port")),
		Handler:           timeoutMiddleware(inboundHttp.CorsMiddleware(metrics.Middleware(mux))),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln("unable to start server", err)
		}
	}()

	slog.Info("http server started")

	go func() {
		eventCron.Start(ctx)
	}()

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		log.Fatalln("unable to shutdown server", err)
	}

	slog.Info("http server stopped")
}
