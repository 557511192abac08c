package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/omarionnn/mom-app/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int) (models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	FindCandidates(ctx context.Context, userID int, city *string, limit int) ([]models.Profile, error)
	DisplayNames(ctx context.Context, userIDs []int) (map[int]string, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByUserID fetches a profile with its kid ages and interest tags.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`SELECT * FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	if err := r.attachDetails(ctx, []*models.Profile{&profile}); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// Upsert writes the profile row and replaces its kids and interests
// wholesale inside one transaction. The final state always matches the
// submitted lists.
func (r *ProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx, `
        INSERT INTO profiles (user_id, display_name, bio, city, state, latitude, longitude, visibility, onboarding_complete)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (user_id) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            bio = EXCLUDED.bio,
            city = EXCLUDED.city,
            state = EXCLUDED.state,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            visibility = EXCLUDED.visibility,
            onboarding_complete = EXCLUDED.onboarding_complete,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`,
		profile.UserID, profile.DisplayName, profile.Bio, profile.City, profile.State,
		profile.Latitude, profile.Longitude, profile.Visibility, profile.OnboardingComplete).
		Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM kids WHERE profile_id=$1`, profile.ID); err != nil {
		return err
	}
	for _, age := range profile.KidAges {
		if _, err = tx.ExecContext(ctx, `INSERT INTO kids (profile_id, age) VALUES ($1, $2)`, profile.ID, age); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM interests WHERE profile_id=$1`, profile.ID); err != nil {
		return err
	}
	for _, tag := range profile.Interests {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO interests (profile_id, tag) VALUES ($1, $2) ON CONFLICT (profile_id, tag) DO NOTHING`,
			profile.ID, tag); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindCandidates returns onboarded, non-private profiles the user has not
// swiped on yet, excluding the user's own profile. A nil city widens the
// search to every city.
func (r *ProfileRepo) FindCandidates(ctx context.Context, userID int, city *string, limit int) ([]models.Profile, error) {
	query := `
        SELECT * FROM profiles p
        WHERE p.user_id <> $1
          AND p.onboarding_complete = TRUE
          AND p.visibility <> 'private'
          AND p.user_id NOT IN (SELECT swiped_id FROM swipes WHERE swiper_id = $1)
          AND ($2::text IS NULL OR p.city = $2)
        ORDER BY p.id
        LIMIT $3`
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, userID, city, limit); err != nil {
		return nil, err
	}

	refs := make([]*models.Profile, len(profiles))
	for i := range profiles {
		refs[i] = &profiles[i]
	}
	if err := r.attachDetails(ctx, refs); err != nil {
		return nil, err
	}
	return profiles, nil
}

// DisplayNames resolves display names for a set of user ids.
func (r *ProfileRepo) DisplayNames(ctx context.Context, userIDs []int) (map[int]string, error) {
	names := make(map[int]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	rows, err := r.db.QueryxContext(ctx,
		`SELECT user_id, display_name FROM profiles WHERE user_id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID int
		var name string
		if err := rows.Scan(&userID, &name); err != nil {
			return nil, err
		}
		names[userID] = name
	}
	return names, rows.Err()
}

// attachDetails loads kid ages and interest tags for the given profiles
// with two bulk queries.
func (r *ProfileRepo) attachDetails(ctx context.Context, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	byID := make(map[int]*models.Profile, len(profiles))
	ids := make([]int, 0, len(profiles))
	for _, p := range profiles {
		p.KidAges = []int{}
		p.Interests = []string{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	kidRows, err := r.db.QueryxContext(ctx,
		`SELECT profile_id, age FROM kids WHERE profile_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer kidRows.Close()
	for kidRows.Next() {
		var profileID, age int
		if err := kidRows.Scan(&profileID, &age); err != nil {
			return err
		}
		if p, ok := byID[profileID]; ok {
			p.KidAges = append(p.KidAges, age)
		}
	}
	if err := kidRows.Err(); err != nil {
		return err
	}

	interestRows, err := r.db.QueryxContext(ctx,
		`SELECT profile_id, tag FROM interests WHERE profile_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer interestRows.Close()
	for interestRows.Next() {
		var profileID int
		var tag string
		if err := interestRows.Scan(&profileID, &tag); err != nil {
			return err
		}
		if p, ok := byID[profileID]; ok {
			p.Interests = append(p.Interests, tag)
		}
	}
	return interestRows.Err()
}
