package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	journalsCollection = "journals"
	countersCollection = "counters"
	journalCounterID   = "journals"
)

// MongoJournalStore keeps journals in MongoDB. Ids stay integers so clients
// see the same shape as with Postgres; they come from a counters document.
type MongoJournalStore struct {
	journals *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewMongoJournalStore(db *mongo.Database) *MongoJournalStore {
	return &MongoJournalStore{
		journals: db.Collection(journalsCollection),
		counters: db.Collection(countersCollection),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes configures the owner/newest-first index used by ListByUser.
// Called on startup from main after Mongo has connected.
func (s *MongoJournalStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.journals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		},
		Options: options.Index().SetName("idx_user_created"),
	})
	return err
}

func (s *MongoJournalStore) ListByUser(ctx context.Context, userID int64) ([]models.Journal, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.journals.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find journals: %w", err)
	}
	defer cur.Close(ctx)

	journals := []models.Journal{}
	if err := cur.All(ctx, &journals); err != nil {
		return nil, fmt.Errorf("decode journals: %w", err)
	}
	return journals, nil
}

func (s *MongoJournalStore) FindForUser(ctx context.Context, userID, id int64) (models.Journal, error) {
	var journal models.Journal
	err := s.journals.FindOne(ctx, ownerFilter(userID, id)).Decode(&journal)
	if err != nil {
		return models.Journal{}, notFoundOr(err, "find journal")
	}
	return journal, nil
}

func (s *MongoJournalStore) Create(ctx context.Context, journal *models.Journal) error {
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	journal.ID = id
	journal.CreatedAt = now
	journal.UpdatedAt = now
	if _, err := s.journals.InsertOne(ctx, journal); err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

func (s *MongoJournalStore) UpdateForUser(ctx context.Context, userID, id int64, patch models.JournalPatch) (models.Journal, error) {
	set := bson.M{"updated_at": s.now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.MoodID != nil {
		set["mood_id"] = *patch.MoodID
	}
	if patch.Empty() {
		return s.FindForUser(ctx, userID, id)
	}

	var journal models.Journal
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.journals.FindOneAndUpdate(ctx, ownerFilter(userID, id), bson.M{"$set": set}, opts).Decode(&journal)
	if err != nil {
		return models.Journal{}, notFoundOr(err, "update journal")
	}
	return journal, nil
}

func (s *MongoJournalStore) DeleteForUser(ctx context.Context, userID, id int64) error {
	res, err := s.journals.DeleteOne(ctx, ownerFilter(userID, id))
	if err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	if res.DeletedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *MongoJournalStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": journalCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next journal id: %w", err)
	}
	return counter.Seq, nil
}

func ownerFilter(userID, id int64) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return services.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
