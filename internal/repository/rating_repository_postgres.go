package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/models"
)

// PostgresRatingRepository keeps rating records in the tree_ratings table.
type PostgresRatingRepository struct{ DB *sql.DB }

func NewPostgresRatingRepository(db *sql.DB) *PostgresRatingRepository {
	return &PostgresRatingRepository{DB: db}
}

const ratingColumns = `id, image_url, aesthetics_score, aesthetics_explanation,
	originality_score, originality_explanation, great_features, improvements, created_at`

func (r *PostgresRatingRepository) Insert(ctx context.Context, t *models.TreeRating) error {
	improvements := t.Improvements
	if improvements == nil {
		improvements = []string{}
	}
	js, err := json.Marshal(improvements)
	if err != nil {
		return fmt.Errorf("encode improvements: %w", err)
	}

	const q = `
insert into tree_ratings(image_url, aesthetics_score, aesthetics_explanation,
	originality_score, originality_explanation, great_features, improvements)
values ($1,$2,$3,$4,$5,$6,$7)
returning id, created_at`
	var (
		id        int64
		createdAt time.Time
	)
	err = r.DB.QueryRowContext(ctx, q,
		t.ImageURL, t.AestheticsScore, t.AestheticsExplanation,
		t.OriginalityScore, t.OriginalityExplanation, t.GreatFeatures, js,
	).Scan(&id, &createdAt)
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)
	t.CreatedAt = createdAt
	return nil
}

const topRatingsQuery = `select ` + ratingColumns + ` from tree_ratings order by aesthetics_score desc, id asc limit $1`

func (r *PostgresRatingRepository) TopByAesthetics(ctx context.Context, limit int) ([]models.TreeRating, error) {
	rows, err := r.DB.QueryContext(ctx, topRatingsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query top ratings: %w", err)
	}
	defer rows.Close()

	out := []models.TreeRating{}
	for rows.Next() {
		t, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top ratings: %w", err)
	}
	return out, nil
}

func (r *PostgresRatingRepository) FindByID(ctx context.Context, id string) (*models.TreeRating, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, ErrInvalidID
	}
	row := r.DB.QueryRowContext(ctx, `select `+ratingColumns+` from tree_ratings where id=$1`, n)
	t, err := scanRating(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRating(s scanner) (models.TreeRating, error) {
	var (
		t  models.TreeRating
		id int64
		js []byte
	)
	if err := s.Scan(&id, &t.ImageURL, &t.AestheticsScore, &t.AestheticsExplanation,
		&t.OriginalityScore, &t.OriginalityExplanation, &t.GreatFeatures, &js, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan rating: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)
	t.Improvements = []string{}
	if len(js) > 0 {
		if err := json.Unmarshal(js, &t.Improvements); err != nil {
			return t, fmt.Errorf("decode improvements: %w", err)
		}
	}
	return t, nil
}
