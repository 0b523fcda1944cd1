package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"resumetailor/internal/classifier"
	"resumetailor/internal/config"
	"resumetailor/internal/docx"
	"resumetailor/internal/handler"
	"resumetailor/internal/lengthfit"
	"resumetailor/internal/pdf"
	"resumetailor/internal/port"
	"resumetailor/internal/rewriter"
	"resumetailor/internal/router"
	"resumetailor/internal/service"
	s3storage "resumetailor/internal/storage/s3"

	// Register generator providers
	_ "resumetailor/internal/rewriter/claude"
	_ "resumetailor/internal/rewriter/gemini"
	_ "resumetailor/internal/rewriter/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the engine
	cls := classifier.New(classifier.Config{
		MaxHeadingChars: cfg.Engine.HeadingMaxChars,
		MaxHeadingWords: cfg.Engine.HeadingMaxWords,
	})
	fit := lengthfit.New(cfg.Engine.Tolerance)
	engine := service.NewEngine(cfg.Engine.MaxFileSize(),
		docx.NewCodec(cls, fit),
		pdf.NewCodec(cls, fit, cfg.Engine.PDFWorkers),
	)

	// Initialize the rewrite generator (optional)
	var generator port.RewriteGenerator
	if cfg.Generator.PrimaryConfig().APIKey != "" {
		generator, err = rewriter.NewFromConfig(&cfg.Generator)
		if err != nil {
			return fmt.Errorf("failed to initialize rewrite generator: %w", err)
		}
	} else {
		log.Printf("Rewrite generator disabled: no API key for provider %q", cfg.Generator.PrimaryConfig().Provider)
	}

	// Initialize storage (optional)
	var storage port.ResultStore
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(context.Background(), &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	tailorSvc := service.NewTailorService(engine, generator, storage, &cfg.S3)

	// Initialize handlers
	docH := handler.NewDocumentHandler(tailorSvc, cfg.Engine.MaxFileSize())
	healthH := handler.NewHealthHandler(engine.Formats(), generator != nil)

	// Setup router
	r := router.Setup(docH, healthH, cfg.CORS.AllowedOrigins, cfg.Engine.MaxFileSize())

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
