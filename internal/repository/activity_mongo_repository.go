package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stemsi/trainhub-backend/internal/model"
)

// ActivityMirrorCollection is the MongoDB collection holding mirrored activity.
const ActivityMirrorCollection = "activity_logs"

// ActivityMirror copies activity entries into MongoDB for long-term analytics.
// A nil *ActivityMirror is valid and does nothing.
type ActivityMirror struct {
	coll *mongo.Collection
}

// NewActivityMirror returns nil when db is nil so callers need no branching.
func NewActivityMirror(db *mongo.Database) *ActivityMirror {
	if db == nil {
		return nil
	}
	return &ActivityMirror{coll: db.Collection(ActivityMirrorCollection)}
}

type activityDocument struct {
	ID        string                 `bson:"_id"`
	ActorID   string                 `bson:"actor_id,omitempty"`
	Action    string                 `bson:"action"`
	Entity    string                 `bson:"entity"`
	EntityID  string                 `bson:"entity_id,omitempty"`
	Details   map[string]interface{} `bson:"details,omitempty"`
	CreatedAt time.Time              `bson:"created_at"`
}

func toActivityDocument(l model.ActivityLog) activityDocument {
	doc := activityDocument{
		ID:        l.ID.String(),
		Action:    l.Action,
		Entity:    l.Entity,
		CreatedAt: l.CreatedAt,
	}
	if l.ActorID != nil {
		doc.ActorID = l.ActorID.String()
	}
	if l.EntityID != nil {
		doc.EntityID = l.EntityID.String()
	}
	if len(l.Details) > 0 {
		var details map[string]interface{}
		if err := bson.UnmarshalExtJSON(l.Details, false, &details); err == nil {
			doc.Details = details
		}
	}
	return doc
}

// EnsureIndexes creates the lookup indexes used by analytics queries.
func (m *ActivityMirror) EnsureIndexes(ctx context.Context) error {
	if m == nil {
		return nil
	}
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}}},
	})
	return err
}

// InsertBatch writes entries unordered; entries already present are skipped.
func (m *ActivityMirror) InsertBatch(ctx context.Context, logs []model.ActivityLog) error {
	if m == nil || len(logs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(logs))
	for _, l := range logs {
		docs = append(docs, toActivityDocument(l))
	}
	_, err := m.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
