package server

import (
	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/diarize/internal/config"
	"github.com/xpanvictor/diarize/internal/domains/review"
	"github.com/xpanvictor/diarize/internal/handlers"
	"github.com/xpanvictor/diarize/pkg/Logger"
)

type Dependencies struct {
	ReviewService review.Service
	Logger        *Logger.Logger
	Configs       *config.Settings
}

func NewServerDependencies(reviewService review.Service, logger *Logger.Logger, cfg *config.Settings) Dependencies {
	return Dependencies{
		ReviewService: reviewService,
		Logger:        logger,
		Configs:       cfg,
	}
}

// InitializeRoutes mounts the full HTTP surface on the gin engine.
func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })

	transcriptionHandler := handlers.NewTranscriptionHandler(dep.ReviewService, dep.Logger)
	utteranceHandler := handlers.NewUtteranceHandler(dep.ReviewService, dep.Logger)
	exportHandler := handlers.NewExportHandler(dep.ReviewService)
	progressHandler := handlers.NewProgressHandler(dep.ReviewService, dep.Logger)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/transcriptions", transcriptionHandler.Submit)
		v1.GET("/transcriptions/current", transcriptionHandler.Current)

		v1.GET("/utterances", utteranceHandler.List)
		v1.POST("/utterances", utteranceHandler.Insert)
		v1.PATCH("/utterances/:id/speaker", utteranceHandler.SetSpeaker)
		v1.POST("/utterances/:id/edit", utteranceHandler.BeginEdit)
		v1.PUT("/utterances/draft", utteranceHandler.UpdateDraft)

		v1.GET("/export", exportHandler.Download)
	}

	// Progress rides outside the api group, browsers connect directly.
	r.GET("/ws/progress", progressHandler.Stream)
}
