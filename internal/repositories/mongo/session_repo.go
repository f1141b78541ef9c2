package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/models"
)

// SessionRepo wraps the interview sessions collection
type SessionRepo struct{ col *mongo.Collection }

// NewSessionRepo opens the collection and ensures the listing indexes
func NewSessionRepo(ctx context.Context, c *Client, collection string) (*SessionRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	if collection == "" {
		collection = "interview_sessions"
	}

	r := &SessionRepo{col: db.Collection(collection)}
	_, _ = r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
	})
	return r, nil
}

func (r *SessionRepo) Create(ctx context.Context, session *models.InterviewSession) error {
	if session.Version == 0 {
		session.Version = 1
	}
	_, err := r.col.InsertOne(ctx, session)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interview.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update replaces the document only when its version still matches.
func (r *SessionRepo) Update(ctx context.Context, session *models.InterviewSession) error {
	expected := session.Version
	session.Version = expected + 1

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": session.ID, "version": expected}, session)
	if err != nil {
		session.Version = expected
		return err
	}
	if res.MatchedCount == 0 {
		session.Version = expected
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": session.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return interview.ErrSessionNotFound
		}
		return interview.ErrVersionConflict
	}
	return nil
}

func (r *SessionRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.InterviewSession, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.InterviewSession{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SessionRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *SessionRepo) ListCompletedByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	return r.find(ctx,
		bson.M{"ownerId": ownerID, "status": models.StatusCompleted},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *SessionRepo) ListStale(ctx context.Context, before time.Time) ([]models.InterviewSession, error) {
	return r.find(ctx,
		bson.M{"status": models.StatusInProgress, "updatedAt": bson.M{"$lt": before}},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}))
}

func (r *SessionRepo) MarkAbandoned(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusInProgress},
		bson.M{
			"$set": bson.M{"status": models.StatusAbandoned, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return interview.ErrVersionConflict
	}
	return nil
}

func (r *SessionRepo) ListUnexported(ctx context.Context, limit int) ([]models.InterviewSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx,
		bson.M{"status": models.StatusCompleted, "exportedAt": bson.M{"$exists": false}},
		opts)
}

func (r *SessionRepo) MarkExported(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"exportedAt": at}})
	return err
}
