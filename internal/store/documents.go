package store

import (
	"context"
	"fmt"
)

// ListDocuments returns the documents of collectionID, newest first.
// An unknown collection yields an empty list.
func (s *Store) ListDocuments(ctx context.Context, collectionID int64) ([]Document, error) {
	var out []Document
	err := s.db.NewSelect().
		Model(&out).
		Where("d.collection_id = ?", collectionID).
		OrderExpr("d.created_at DESC, d.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents of collection %d: %w", collectionID, err)
	}
	return out, nil
}

// GetDocument returns the document with id, or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, id int64) (Document, error) {
	var d Document
	if err := s.db.NewSelect().Model(&d).Where("d.id = ?", id).Scan(ctx); err != nil {
		return Document{}, notFound(err, "document", id)
	}
	return d, nil
}

// CreateDocument stores a new document in an existing collection and returns
// it as stored. A missing collection is a validation error.
func (s *Store) CreateDocument(ctx context.Context, in DocumentInput) (Document, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return Document{}, invalid(err)
	}

	exists, err := s.db.NewSelect().
		Model((*Collection)(nil)).
		Where("c.id = ?", in.CollectionID).
		Exists(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("checking collection %d: %w", in.CollectionID, err)
	}
	if !exists {
		return Document{}, fmt.Errorf("%w: collection %d does not exist", ErrInvalid, in.CollectionID)
	}

	now := s.timestamp()
	d := Document{
		CollectionID: in.CollectionID,
		Name:         in.Name,
		Content:      in.Content,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.db.NewInsert().Model(&d).Exec(ctx); err != nil {
		return Document{}, fmt.Errorf("creating document: %w", err)
	}
	return s.GetDocument(ctx, d.ID)
}

// UpdateDocument replaces the name and content of document id and returns it
// as stored. Returns ErrNotFound if id does not exist.
func (s *Store) UpdateDocument(ctx context.Context, id int64, in DocumentUpdate) (Document, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return Document{}, invalid(err)
	}

	res, err := s.db.NewUpdate().
		Model((*Document)(nil)).
		Set("name = ?", in.Name).
		Set("content = ?", in.Content).
		Set("updated_at = ?", s.timestamp()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("updating document %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Document{}, fmt.Errorf("%w: document %d", ErrNotFound, id)
	}
	return s.GetDocument(ctx, id)
}

// DeleteDocument deletes document id and reports whether it existed.
func (s *Store) DeleteDocument(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*Document)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("deleting document %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting document %d: %w", id, err)
	}
	return n > 0, nil
}
