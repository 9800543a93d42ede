package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/platform/store"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(store.CollPatients)}
}

func (r *mongoRepo) Create(ctx context.Context, p *Patient) (string, error) {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return "", fmt.Errorf("insert patient: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	p.ID = oid
	return oid.Hex(), nil
}

func (r *mongoRepo) GetByDisplayID(ctx context.Context, displayID string) (*Patient, error) {
	return r.findOne(ctx, bson.M{"id": displayID})
}

func (r *mongoRepo) GetByAssistantID(ctx context.Context, assistantUserID string) (*Patient, error) {
	return r.findOne(ctx, bson.M{"assistant_user_id": assistantUserID})
}

func (r *mongoRepo) findOne(ctx context.Context, filter bson.M) (*Patient, error) {
	var p Patient
	err := r.coll.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &p, nil
}

func (r *mongoRepo) ListSummaries(ctx context.Context) ([]*Summary, error) {
	// Fetch only the sidebar fields.
	proj := bson.M{"id": 1, "name": 1, "age": 1, "gender": 1, "riskLevel": 1, "_id": 0}
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetProjection(proj))
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer cur.Close(ctx)

	summaries := []*Summary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode patient summaries: %w", err)
	}
	return summaries, nil
}

func (r *mongoRepo) SetSymptomSnapshot(ctx context.Context, id primitive.ObjectID, date string, snap symptom.Snapshot, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"symptom_states." + date: snap,
		"last_conversation_date": at,
		"conversation_ended":     true,
	}}
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("set symptom snapshot: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) ListUnassigned(ctx context.Context) ([]*Patient, error) {
	// Absent field and empty string are both legacy "unassigned" states.
	filter := bson.M{"$or": []bson.M{
		{"assistant_user_id": bson.M{"$exists": false}},
		{"assistant_user_id": ""},
	}}
	return r.findAll(ctx, filter)
}

func (r *mongoRepo) AssignAssistantID(ctx context.Context, id primitive.ObjectID, assistantUserID string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"assistant_user_id":     assistantUserID,
		"assistant_id_added_at": at,
	}}
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("assign assistant id: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) ListAssignedSince(ctx context.Context, since time.Time) ([]*Patient, error) {
	return r.findAll(ctx, bson.M{"assistant_id_added_at": bson.M{"$gte": since}})
}

func (r *mongoRepo) findAll(ctx context.Context, filter bson.M) ([]*Patient, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find patients: %w", err)
	}
	defer cur.Close(ctx)

	patients := []*Patient{}
	if err := cur.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("decode patients: %w", err)
	}
	return patients, nil
}
