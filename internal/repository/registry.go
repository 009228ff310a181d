package repository

import (
	"context"

	"github.com/scorecard/api/internal/ingest"
	"gorm.io/gorm"
)

// Registry implements ingest.DB over gorm: pool-scoped stores by default,
// transaction-scoped stores inside InTransaction. The transaction commits
// when fn returns nil and rolls back otherwise, so partial ingestion
// writes are never observable.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) Stores() ingest.Stores {
	return bindStores(r.db)
}

func (r *Registry) InTransaction(ctx context.Context, fn func(stores ingest.Stores) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bindStores(tx))
	})
}

func bindStores(db *gorm.DB) ingest.Stores {
	return ingest.Stores{
		Issues:   NewIssueStore(db),
		Projects: NewProjectStore(db),
		Segments: NewSegmentStore(db),
		Errors:   NewErrorStore(db),
	}
}
