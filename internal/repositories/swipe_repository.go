package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/omarionnn/mom-app/internal/models"
)

// SwipeRepository abstracts swipe persistence. Swipe rows are immutable
// and unique per ordered (swiper, swiped) pair.
type SwipeRepository interface {
	Create(ctx context.Context, swipe *models.Swipe) (bool, error)
	HasRightSwipe(ctx context.Context, swiperID, swipedID int) (bool, error)
}

// SwipeRepo is a sqlx implementation of SwipeRepository.
type SwipeRepo struct {
	db *sqlx.DB
}

// NewSwipeRepo constructs a SwipeRepo.
func NewSwipeRepo(db *sqlx.DB) *SwipeRepo {
	return &SwipeRepo{db: db}
}

// Create inserts the swipe and reports whether a row was written. A
// duplicate (swiper, swiped) pair leaves the existing row untouched and
// returns false; this makes retries and races safe to re-execute.
func (r *SwipeRepo) Create(ctx context.Context, swipe *models.Swipe) (bool, error) {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO swipes (swiper_id, swiped_id, direction)
        VALUES ($1, $2, $3)
        ON CONFLICT (swiper_id, swiped_id) DO NOTHING
        RETURNING id, created_at`,
		swipe.SwiperID, swipe.SwipedID, swipe.Direction).
		Scan(&swipe.ID, &swipe.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasRightSwipe reports whether swiper has right-swiped on swiped.
func (r *SwipeRepo) HasRightSwipe(ctx context.Context, swiperID, swipedID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM swipes WHERE swiper_id=$1 AND swiped_id=$2 AND direction='right')`,
		swiperID, swipedID)
	return exists, err
}
