package ingest

import (
	"context"

	"github.com/scorecard/api/internal/model"
)

// The orchestrator consumes storage through these interfaces so the
// workflow can be exercised without a database. The gorm implementations
// live in internal/repository.

type TypologyStore interface {
	Any(ctx context.Context) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Issue, error)
	CreateProjectIssue(ctx context.Context, projectIssue *model.ProjectIssue) error
}

type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	UpdateAttributes(ctx context.Context, id int64, attrs map[string]interface{}) error
	AddMembership(ctx context.Context, projectID, userID int64) error
}

type SegmentStore interface {
	DeleteByProjectID(ctx context.Context, projectID int64) error
	BulkInsert(ctx context.Context, projectID int64, pairs []model.SegmentPair) error
}

type ErrorStore interface {
	CountByProjectID(ctx context.Context, projectID int64) (int64, error)
}

// Stores bundles the pipeline's storage dependencies, all bound to the
// same database handle (pool or transaction).
type Stores struct {
	Issues   TypologyStore
	Projects ProjectStore
	Segments SegmentStore
	Errors   ErrorStore
}

// DB is the unit-of-work boundary. Stores() reads through the connection
// pool; InTransaction rebinds every store to one transaction and commits
// only when fn returns nil.
type DB interface {
	Stores() Stores
	InTransaction(ctx context.Context, fn func(stores Stores) error) error
}
