package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"trail_tracker/internal/models"
)

// Repo is the persistence seam the orchestrator writes through; tests
// substitute stubs for it.
type Repo interface {
	Create(ctx context.Context, track *models.Track) error
}

type gormRepo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repo {
	return &gormRepo{db: db}
}

func (r *gormRepo) Create(ctx context.Context, track *models.Track) error {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %q at %s", ErrDuplicateTrack, track.Name, track.DateTime)
		}
		return err
	}
	return nil
}
