package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/config"
	"github.com/developia-II/tree-rater-backend/internal/database"
	"github.com/developia-II/tree-rater-backend/internal/handlers"
	"github.com/developia-II/tree-rater-backend/internal/repository"
	"github.com/developia-II/tree-rater-backend/internal/server"
	"github.com/developia-II/tree-rater-backend/internal/services"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/pkg/metrics"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	lg, err := logger.New(os.Stdout, cfg.LogLevel, cfg.Production())
	if err != nil {
		return err
	}

	mongo, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer mongo.Disconnect()

	ratings, closeRatings, err := openRatings(ctx, cfg, mongo)
	if err != nil {
		return err
	}
	defer closeRatings()

	critic, err := newCritic(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := critic.(io.Closer); ok {
		defer c.Close()
	}

	m := metrics.New()
	h := handlers.New(handlers.Deps{
		Blobs:          repository.NewBlobRepository(mongo.DB, cfg.BlobBucket, cfg.BaseURL()),
		Ratings:        ratings,
		Critic:         critic,
		Log:            lg.Named("upload"),
		Metrics:        m,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Production:     cfg.Production(),
		BlobTimeout:    cfg.BlobTimeout,
		AITimeout:      cfg.AITimeout,
		DBTimeout:      cfg.DBTimeout,
	})

	app := server.New(server.Options{
		Config:    cfg,
		Handler:   h,
		Log:       lg,
		Metrics:   m,
		AccessLog: true,
	})

	errc := make(chan error, 1)
	go func() {
		lg.Info(ctx, "server listening",
			logger.String("port", cfg.Port),
			logger.String("engine", critic.Name()),
			logger.String("store", cfg.StoreDriver))
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	lg.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func openRatings(ctx context.Context, cfg *config.Config, mongo *database.Mongo) (handlers.RatingStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return repository.NewPostgresRatingRepository(db), func() { closeDB(db) }, nil
	case config.DriverMongo:
		repo := repository.NewMongoRatingRepository(mongo.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return repo, func() {}, nil
	}
	return nil, nil, errors.New("unknown store driver " + cfg.StoreDriver)
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Println("close postgres:", err)
	}
}

func newCritic(ctx context.Context, cfg *config.Config) (services.Critic, error) {
	if cfg.AIEngine == config.EngineGemini {
		return services.NewGeminiCritic(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return services.NewOpenAICritic(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
}
