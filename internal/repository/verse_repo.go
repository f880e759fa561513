package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"versebattle/internal/model"
)

// VerseRepo is the passage catalog contract: fetch by identifier, by
// difficulty tier, and bounded random samples.
type VerseRepo interface {
	GetByID(ctx context.Context, id string) (*model.Verse, error)
	ByDifficulty(ctx context.Context, d model.Difficulty) ([]*model.Verse, error)
	RandomSample(ctx context.Context, n int) ([]*model.Verse, error)
	RandomByDifficulty(ctx context.Context, d model.Difficulty, n int) ([]*model.Verse, error)
	InsertMany(ctx context.Context, verses []*model.Verse) error
	Count(ctx context.Context) (int64, error)
}

type verseRepo struct {
	collection *mongo.Collection
}

// NewVerseRepo creates a new verse repository
func NewVerseRepo(db *mongo.Database) VerseRepo {
	return &verseRepo{
		collection: db.Collection("verses"),
	}
}

func (r *verseRepo) GetByID(ctx context.Context, id string) (*model.Verse, error) {
	var verse model.Verse
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&verse)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &verse, nil
}

func (r *verseRepo) ByDifficulty(ctx context.Context, d model.Difficulty) ([]*model.Verse, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"difficulty": d})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var verses []*model.Verse
	if err := cursor.All(ctx, &verses); err != nil {
		return nil, err
	}
	return verses, nil
}

func (r *verseRepo) RandomSample(ctx context.Context, n int) ([]*model.Verse, error) {
	return r.sample(ctx, bson.D{}, n)
}

func (r *verseRepo) RandomByDifficulty(ctx context.Context, d model.Difficulty, n int) ([]*model.Verse, error) {
	return r.sample(ctx, bson.D{{Key: "difficulty", Value: d}}, n)
}

func (r *verseRepo) sample(ctx context.Context, match bson.D, n int) ([]*model.Verse, error) {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: n}}}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var verses []*model.Verse
	if err := cursor.All(ctx, &verses); err != nil {
		return nil, err
	}
	return verses, nil
}

func (r *verseRepo) InsertMany(ctx context.Context, verses []*model.Verse) error {
	docs := make([]interface{}, len(verses))
	for i, v := range verses {
		docs[i] = v
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *verseRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
