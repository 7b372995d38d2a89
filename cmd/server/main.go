package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"skillsync/internal/api"
	"skillsync/internal/api/handlers"
	"skillsync/internal/artist"
	"skillsync/internal/assets"
	"skillsync/internal/embedding"
	"skillsync/internal/evidence"
	"skillsync/internal/index"
	"skillsync/internal/ingest"
	"skillsync/internal/ocr"
	"skillsync/internal/reasoning"
)

const defaultStaticDir = "static_images"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("error loading .env file")
		}
		log.Info().Msg(".env file not found, relying on system environment")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reasoning is the one collaborator the quiz workflows cannot degrade
	// around; everything else is optional and disables its feature.
	reasoner, err := reasoning.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize reasoning client")
	}
	defer reasoner.Close()

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = defaultStaticDir
	}
	store, err := assets.NewStore(staticDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize asset store")
	}
	if err := store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear asset store at startup")
	}

	idx := index.NewStore(embedding.NewEmbeddingFunc())

	recognizer, err := ocr.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize OCR client")
	}
	if recognizer != nil {
		defer recognizer.Close()
	}

	var textRecognizer ingest.TextRecognizer
	if recognizer != nil {
		textRecognizer = recognizer
	}
	ingestor := ingest.NewIngestor(store, idx, textRecognizer)

	var generator evidence.Generator
	if gen := artist.NewClient(); gen != nil {
		generator = gen
	}
	resolver := evidence.NewResolver(store, generator)

	handler := handlers.NewHandler(ingestor, idx, resolver, reasoner)

	router := gin.Default()
	api.SetupRoutes(router, handler, store.Dir())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
