package store

import (
	"context"
	"fmt"
)

// ListCollections returns every collection, newest first.
func (s *Store) ListCollections(ctx context.Context) ([]Collection, error) {
	var out []Collection
	err := s.db.NewSelect().
		Model(&out).
		OrderExpr("c.created_at DESC, c.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return out, nil
}

// GetCollection returns the collection with id, or ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, id int64) (Collection, error) {
	var c Collection
	if err := s.db.NewSelect().Model(&c).Where("c.id = ?", id).Scan(ctx); err != nil {
		return Collection{}, notFound(err, "collection", id)
	}
	return c, nil
}

// CreateCollection stores a new collection and returns it as stored.
func (s *Store) CreateCollection(ctx context.Context, in CollectionInput) (Collection, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return Collection{}, invalid(err)
	}

	now := s.timestamp()
	c := Collection{
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.NewInsert().Model(&c).Exec(ctx); err != nil {
		return Collection{}, fmt.Errorf("creating collection: %w", err)
	}
	return s.GetCollection(ctx, c.ID)
}

// UpdateCollection replaces the name and description of collection id and
// returns it as stored. Returns ErrNotFound if id does not exist.
func (s *Store) UpdateCollection(ctx context.Context, id int64, in CollectionInput) (Collection, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return Collection{}, invalid(err)
	}

	res, err := s.db.NewUpdate().
		Model((*Collection)(nil)).
		Set("name = ?", in.Name).
		Set("description = ?", in.Description).
		Set("updated_at = ?", s.timestamp()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return Collection{}, fmt.Errorf("updating collection %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Collection{}, fmt.Errorf("%w: collection %d", ErrNotFound, id)
	}
	return s.GetCollection(ctx, id)
}

// DeleteCollection deletes collection id and, through the foreign key, its
// documents. Reports whether the collection existed.
func (s *Store) DeleteCollection(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*Collection)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("deleting collection %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting collection %d: %w", id, err)
	}
	return n > 0, nil
}
