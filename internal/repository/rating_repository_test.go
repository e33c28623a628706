package repository

import (
	"context"
	"testing"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/models"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestTopRatingsOptions(t *testing.T) {
	Convey("Given the leaderboard query options", t, func() {
		opts := topRatingsOptions(10)

		Convey("They sort by aesthetics descending then insertion order, with a limit", func() {
			So(opts.Sort, ShouldResemble, bson.D{{Key: "aesthetics_score", Value: -1}, {Key: "_id", Value: 1}})
			So(opts.Limit, ShouldNotBeNil)
			So(*opts.Limit, ShouldEqual, 10)
		})
	})
}

func TestMongoRatingRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "tree_ratings"

	mt.Run("insert", func(mt *mtest.T) {
		Convey("Given a successful insert", mt.T, func() {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
			repo := NewMongoRatingRepository(mt.DB)
			rec := models.NewTreeRating("http://test/api/images/x", models.Rating{})

			err := repo.Insert(context.Background(), rec)

			Convey("The record gets an ObjectID and a creation time", func() {
				So(err, ShouldBeNil)
				_, perr := primitive.ObjectIDFromHex(rec.ID)
				So(perr, ShouldBeNil)
				So(rec.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})
	})

	mt.Run("top", func(mt *mtest.T) {
		Convey("Given stored documents", mt.T, func() {
			first, second := primitive.NewObjectID(), primitive.NewObjectID()
			created := time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)
			mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+ns, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: first},
					{Key: "image_url", Value: "http://test/a"},
					{Key: "aesthetics_score", Value: 5.0},
					{Key: "originality_score", Value: 2.0},
					{Key: "improvements", Value: bson.A{"More lights"}},
					{Key: "created_at", Value: created},
				},
				bson.D{
					{Key: "_id", Value: second},
					{Key: "image_url", Value: "http://test/b"},
					{Key: "aesthetics_score", Value: 3.0},
				},
			))
			repo := NewMongoRatingRepository(mt.DB)

			out, err := repo.TopByAesthetics(context.Background(), 10)

			Convey("They decode into records in store order", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 2)
				So(out[0].ID, ShouldEqual, first.Hex())
				So(out[0].TotalScore(), ShouldEqual, 7.0)
				So(out[0].Improvements, ShouldResemble, []string{"More lights"})
				So(out[1].ID, ShouldEqual, second.Hex())
				So(out[1].Improvements, ShouldBeEmpty)
			})
		})
	})

	mt.Run("missing", func(mt *mtest.T) {
		Convey("Given no matching document", mt.T, func() {
			mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+ns, mtest.FirstBatch))
			repo := NewMongoRatingRepository(mt.DB)

			_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())

			Convey("The lookup reports not found", func() {
				So(err, ShouldEqual, ErrNotFound)
			})
		})
	})
}
