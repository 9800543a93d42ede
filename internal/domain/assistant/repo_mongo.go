package assistant

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carewatch/carewatch/internal/platform/store"
)

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(store.CollAssistantIDLogs)}
}

func (r *mongoRepo) Insert(ctx context.Context, log *AssignmentLog) error {
	if _, err := r.coll.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert assignment log: %w", err)
	}
	return nil
}
