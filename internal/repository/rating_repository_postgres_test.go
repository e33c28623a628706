package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/developia-II/tree-rater-backend/internal/models"
	. "github.com/smartystreets/goconvey/convey"
)

var ratingRowColumns = []string{
	"id", "image_url", "aesthetics_score", "aesthetics_explanation",
	"originality_score", "originality_explanation", "great_features", "improvements", "created_at",
}

func TestPostgresRatingRepository(t *testing.T) {
	Convey("Given a Postgres repository over a mocked connection", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()
		repo := NewPostgresRatingRepository(db)
		ctx := context.Background()
		created := time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

		Convey("Insert takes id and created_at from the returning clause", func() {
			mock.ExpectQuery(`insert into tree_ratings`).
				WithArgs("http://test/a", 4.0, "Nice", 3.0, "Classic", "Star", sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

			rec := models.NewTreeRating("http://test/a", models.Rating{
				Aesthetics:    models.ScoreSection{Score: 4, Explanation: "Nice"},
				Originality:   models.ScoreSection{Score: 3, Explanation: "Classic"},
				GreatFeatures: "Star",
			})
			So(repo.Insert(ctx, rec), ShouldBeNil)
			So(rec.ID, ShouldEqual, "7")
			So(rec.CreatedAt, ShouldEqual, created)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("The leaderboard query orders by score then id and is limited", func() {
			So(topRatingsQuery, ShouldEndWith, "order by aesthetics_score desc, id asc limit $1")

			mock.ExpectQuery(regexp.QuoteMeta(topRatingsQuery)).
				WithArgs(10).
				WillReturnRows(sqlmock.NewRows(ratingRowColumns).
					AddRow(int64(2), "http://test/b", 5.0, "", 1.0, "", "", []byte(`["Add lights"]`), created).
					AddRow(int64(1), "http://test/a", 3.0, "", 2.0, "", "", []byte(`[]`), created))

			out, err := repo.TopByAesthetics(ctx, 10)
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 2)
			So(out[0].ID, ShouldEqual, "2")
			So(out[0].Improvements, ShouldResemble, []string{"Add lights"})
			So(out[1].Improvements, ShouldNotBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("An unknown id is not found", func() {
			mock.ExpectQuery(`where id=\$1`).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows(ratingRowColumns))

			_, err := repo.FindByID(ctx, "5")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("Query failures are wrapped", func() {
			mock.ExpectQuery(regexp.QuoteMeta(topRatingsQuery)).WillReturnError(errors.New("conn reset"))

			_, err := repo.TopByAesthetics(ctx, 10)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "conn reset")
		})
	})
}
