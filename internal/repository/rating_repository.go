package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ratingsCollection = "tree_ratings"

type ratingDocument struct {
	ID                     primitive.ObjectID `bson:"_id"`
	ImageURL               string             `bson:"image_url"`
	AestheticsScore        float64            `bson:"aesthetics_score"`
	AestheticsExplanation  string             `bson:"aesthetics_explanation"`
	OriginalityScore       float64            `bson:"originality_score"`
	OriginalityExplanation string             `bson:"originality_explanation"`
	GreatFeatures          string             `bson:"great_features"`
	Improvements           []string           `bson:"improvements"`
	CreatedAt              time.Time          `bson:"created_at"`
}

func (d ratingDocument) model() models.TreeRating {
	improvements := d.Improvements
	if improvements == nil {
		improvements = []string{}
	}
	return models.TreeRating{
		ID:                     d.ID.Hex(),
		ImageURL:               d.ImageURL,
		AestheticsScore:        d.AestheticsScore,
		AestheticsExplanation:  d.AestheticsExplanation,
		OriginalityScore:       d.OriginalityScore,
		OriginalityExplanation: d.OriginalityExplanation,
		GreatFeatures:          d.GreatFeatures,
		Improvements:           improvements,
		CreatedAt:              d.CreatedAt,
	}
}

// MongoRatingRepository keeps rating records in the tree_ratings collection.
type MongoRatingRepository struct {
	DB *mongo.Database
}

func NewMongoRatingRepository(db *mongo.Database) *MongoRatingRepository {
	return &MongoRatingRepository{DB: db}
}

func (r *MongoRatingRepository) collection() *mongo.Collection {
	return r.DB.Collection(ratingsCollection)
}

// leaderboardOrder is shared by the query and its index.
var leaderboardOrder = bson.D{{Key: "aesthetics_score", Value: -1}, {Key: "_id", Value: 1}}

func topRatingsOptions(limit int) *options.FindOptions {
	return options.Find().SetSort(leaderboardOrder).SetLimit(int64(limit))
}

// EnsureIndexes creates the index backing the leaderboard query.
func (r *MongoRatingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: leaderboardOrder,
	})
	return err
}

// Insert assigns ID and CreatedAt on t and writes it.
func (r *MongoRatingRepository) Insert(ctx context.Context, t *models.TreeRating) error {
	doc := ratingDocument{
		ID:                     primitive.NewObjectID(),
		ImageURL:               t.ImageURL,
		AestheticsScore:        t.AestheticsScore,
		AestheticsExplanation:  t.AestheticsExplanation,
		OriginalityScore:       t.OriginalityScore,
		OriginalityExplanation: t.OriginalityExplanation,
		GreatFeatures:          t.GreatFeatures,
		Improvements:           t.Improvements,
		CreatedAt:              time.Now().UTC(),
	}
	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	t.ID = doc.ID.Hex()
	t.CreatedAt = doc.CreatedAt
	return nil
}

// TopByAesthetics returns up to limit records, highest aesthetics score
// first; ties fall back to insertion order.
func (r *MongoRatingRepository) TopByAesthetics(ctx context.Context, limit int) ([]models.TreeRating, error) {
	cursor, err := r.collection().Find(ctx, bson.M{}, topRatingsOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("find top ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ratingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode top ratings: %w", err)
	}

	out := make([]models.TreeRating, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *MongoRatingRepository) FindByID(ctx context.Context, id string) (*models.TreeRating, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc ratingDocument
	if err := r.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find rating %s: %w", id, err)
	}
	t := doc.model()
	return &t, nil
}
