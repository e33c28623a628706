package handlers

import (
	"context"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/models"
	"github.com/developia-II/tree-rater-backend/internal/repository"
	"github.com/developia-II/tree-rater-backend/internal/services"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/pkg/metrics"
)

// LeaderboardSize is the number of entries returned by /api/top-trees.
const LeaderboardSize = 10

type BlobStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Open(ctx context.Context, id string) (*repository.Blob, error)
	PublicURL(id string) string
}

type RatingStore interface {
	Insert(ctx context.Context, t *models.TreeRating) error
	TopByAesthetics(ctx context.Context, limit int) ([]models.TreeRating, error)
	FindByID(ctx context.Context, id string) (*models.TreeRating, error)
}

type Deps struct {
	Blobs   BlobStore
	Ratings RatingStore
	Critic  services.Critic
	Log     logger.Logger
	Metrics *metrics.Manager

	MaxUploadBytes int64
	Production     bool

	BlobTimeout time.Duration
	AITimeout   time.Duration
	DBTimeout   time.Duration
}

type Handler struct {
	blobs   BlobStore
	ratings RatingStore
	critic  services.Critic
	log     logger.Logger
	metrics *metrics.Manager

	maxUploadBytes int64
	production     bool

	blobTimeout time.Duration
	aiTimeout   time.Duration
	dbTimeout   time.Duration
}

func New(d Deps) *Handler {
	h := &Handler{
		blobs:          d.Blobs,
		ratings:        d.Ratings,
		critic:         d.Critic,
		log:            d.Log,
		metrics:        d.Metrics,
		maxUploadBytes: d.MaxUploadBytes,
		production:     d.Production,
		blobTimeout:    d.BlobTimeout,
		aiTimeout:      d.AITimeout,
		dbTimeout:      d.DBTimeout,
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 5 * 1024 * 1024
	}
	if h.blobTimeout <= 0 {
		h.blobTimeout = 15 * time.Second
	}
	if h.aiTimeout <= 0 {
		h.aiTimeout = 60 * time.Second
	}
	if h.dbTimeout <= 0 {
		h.dbTimeout = 10 * time.Second
	}
	return h
}

// MaxUploadMB is the upload limit in whole megabytes, used in messages.
func (h *Handler) MaxUploadMB() int64 {
	mb := h.maxUploadBytes / (1024 * 1024)
	if mb < 1 {
		mb = 1
	}
	return mb
}
