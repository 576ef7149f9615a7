package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/diarize/internal/config"
	"github.com/xpanvictor/diarize/internal/domains/review"
	"github.com/xpanvictor/diarize/internal/server"
	"github.com/xpanvictor/diarize/internal/upload"
	"github.com/xpanvictor/diarize/pkg/Logger"
	"github.com/xpanvictor/diarize/pkg/stt/scribe"
)

// Entry point for the diarization review server.
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	logger.Info("Logger initialized")

	// transcription engine and upload rules
	engine := scribe.New(scribe.Config{
		BaseURL:        cfg.STT.BaseURL,
		APIKey:         cfg.STT.APIKey,
		Tier:           cfg.STT.Tier,
		PollInterval:   cfg.STT.PollInterval,
		RequestTimeout: cfg.STT.RequestTimeout,
	}, logger.Named("scribe"))
	validator := upload.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.Extensions, logger)

	// review loop owns all mutable state
	reviewService := review.New(validator, engine, cfg.Editor.QuietPeriod, logger.Named("review"))
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go reviewService.Run(loopCtx)

	// compose router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	dep := server.NewServerDependencies(reviewService, logger, cfg)
	server.InitializeRoutes(router, dep)

	// listen with graceful exit
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router.Handler(),
	}
	go func() {
		logger.Infof("listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	logger.Info("Shutdown system")
}
