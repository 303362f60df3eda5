/*
main.go - HTTP server entry point

PURPOSE:
  Runs the payments engine behind a REST API: submit transactions one at
  a time, upload whole CSV statements, query accounts, download the
  report. Ledger state is held in SQLite for the lifetime of the process
  (":memory:" by default, so nothing survives a restart).

CONFIGURATION (env, optionally via a .env file):
  PORT       HTTP port (default 8080)
  DB_PATH    SQLite database path (default ":memory:")
  LOG_LEVEL  zap level: debug, info, warn, error (default info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  in-flight requests, close the database, exit.

SEE ALSO:
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: the backing store
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/payments-engine/api"
	"github.com/warp/payments-engine/store/sqlite"
)

func main() {
	// Configuration: environment first, .env file as fallback.
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // missing .env is fine

	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_PATH", ":memory:")
	viper.SetDefault("LOG_LEVEL", "info")

	logger := newLogger(viper.GetString("LOG_LEVEL"))
	defer logger.Sync()

	// Store
	st, err := sqlite.New(viper.GetString("DB_PATH"))
	if err != nil {
		logger.Fatalw("failed to initialize database", "error", err)
	}
	defer st.Close()

	// Router
	handler := api.NewHandler(st, logger)
	router := api.NewRouter(handler)

	port := viper.GetInt("PORT")
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infow("server starting", "port", port, "db", viper.GetString("DB_PATH"))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalw("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *zap.SugaredLogger {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		os.Exit(1)
	}
	return logger.Sugar()
}
