package patient

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewatch/carewatch/internal/domain/symptom"
)

var (
	// ErrNotFound indicates no patient matches the given identifier.
	ErrNotFound = errors.New("patient not found")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) (string, error)
	GetByDisplayID(ctx context.Context, displayID string) (*Patient, error)
	GetByAssistantID(ctx context.Context, assistantUserID string) (*Patient, error)
	ListSummaries(ctx context.Context) ([]*Summary, error)

	// SetSymptomSnapshot writes one date-keyed snapshot and stamps the
	// conversation as ended, in a single atomic document update.
	SetSymptomSnapshot(ctx context.Context, id primitive.ObjectID, date string, snap symptom.Snapshot, at time.Time) error

	// ListUnassigned returns patients whose assistant id is absent or
	// empty.
	ListUnassigned(ctx context.Context) ([]*Patient, error)
	AssignAssistantID(ctx context.Context, id primitive.ObjectID, assistantUserID string, at time.Time) error
	ListAssignedSince(ctx context.Context, since time.Time) ([]*Patient, error)
}
