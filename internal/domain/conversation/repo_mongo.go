package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carewatch/carewatch/internal/platform/store"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(store.CollConversationLogs)}
}

func (r *mongoRepo) Insert(ctx context.Context, m *Message) error {
	res, err := r.coll.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

func (r *mongoRepo) ListSince(ctx context.Context, patientID string, since time.Time) ([]*Message, error) {
	filter := bson.M{
		"patient_id": patientID,
		"created_at": bson.M{"$gte": since},
	}
	return r.find(ctx, filter)
}

func (r *mongoRepo) ListBetween(ctx context.Context, patientID string, from, to time.Time) ([]*Message, error) {
	filter := bson.M{
		"patient_id": patientID,
		"created_at": bson.M{"$gte": from, "$lte": to},
	}
	return r.find(ctx, filter)
}

func (r *mongoRepo) ListAll(ctx context.Context, patientID string) ([]*Message, error) {
	return r.find(ctx, bson.M{"patient_id": patientID})
}

func (r *mongoRepo) LastBotMessage(ctx context.Context, patientID string) (*Message, error) {
	filter := bson.M{"patient_id": patientID, "role": RoleBot}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var m Message
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoMessages
		}
		return nil, fmt.Errorf("find last bot message: %w", err)
	}
	return &m, nil
}

func (r *mongoRepo) find(ctx context.Context, filter bson.M) ([]*Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []*Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}
