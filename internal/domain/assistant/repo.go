package assistant

import "context"

type Repository interface {
	Insert(ctx context.Context, log *AssignmentLog) error
}
