// Command server runs the recipe catalog: HTML pages, the JSON-RPC API and
// the Prometheus metrics endpoint in one process.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Elizaveta2894/rgz-part2/api"
	"github.com/Elizaveta2894/rgz-part2/auth"
	"github.com/Elizaveta2894/rgz-part2/config"
	"github.com/Elizaveta2894/rgz-part2/jsonrpc"
	"github.com/Elizaveta2894/rgz-part2/metrics"
	"github.com/Elizaveta2894/rgz-part2/middleware"
	"github.com/Elizaveta2894/rgz-part2/store"
	"github.com/Elizaveta2894/rgz-part2/web"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir, log)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(st)
	apiSvc := api.NewService(st, authSvc, log)

	m := metrics.New()

	dispatcher := jsonrpc.NewDispatcher(authSvc,
		jsonrpc.WithLogger(log),
		jsonrpc.WithRecorder(m),
	)
	apiSvc.RegisterMethods(dispatcher)

	cookie, err := middleware.NewSecureCookie("session", cfg.SessionKeyID, cfg.SessionKeys,
		middleware.WithSecure(cfg.CookieSecure),
	)
	if err != nil {
		return err
	}
	session := middleware.SessionProcessor(cookie, cfg.SessionTTL)

	server, err := web.NewServer(st, authSvc, apiSvc, session, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(dispatcher, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
