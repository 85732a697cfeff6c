package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ExploreFeedRow is an explore item joined with its store.
type ExploreFeedRow struct {
	ExploreItem
	StoreName string
	StoreSlug string
}

const listExploreFeed = `
SELECT e.id, e.store_id, e.kind, e.title, e.media_url, e.offer_id,
       e.sort_order, e.is_active, e.created_at, s.name, s.slug
FROM explore_items e
JOIN stores s ON s.id = e.store_id
WHERE e.is_active = true AND s.is_active = true
ORDER BY e.sort_order, e.created_at DESC
`

func (q *Queries) ListExploreFeed(ctx context.Context) ([]ExploreFeedRow, error) {
	rows, err := q.db.Query(ctx, listExploreFeed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feed []ExploreFeedRow
	for rows.Next() {
		var r ExploreFeedRow
		if err := rows.Scan(&r.ID, &r.StoreID, &r.Kind, &r.Title, &r.MediaUrl, &r.OfferID,
			&r.SortOrder, &r.IsActive, &r.CreatedAt, &r.StoreName, &r.StoreSlug); err != nil {
			return nil, err
		}
		feed = append(feed, r)
	}
	return feed, rows.Err()
}

type CreateExploreItemParams struct {
	StoreID   uuid.UUID
	Kind      string
	Title     string
	MediaUrl  string
	OfferID   pgtype.UUID
	SortOrder int32
}

const createExploreItem = `
INSERT INTO explore_items (store_id, kind, title, media_url, offer_id, sort_order)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, store_id, kind, title, media_url, offer_id, sort_order, is_active, created_at
`

func (q *Queries) CreateExploreItem(ctx context.Context, arg CreateExploreItemParams) (ExploreItem, error) {
	row := q.db.QueryRow(ctx, createExploreItem,
		arg.StoreID, arg.Kind, arg.Title, arg.MediaUrl, arg.OfferID, arg.SortOrder)
	var e ExploreItem
	err := row.Scan(&e.ID, &e.StoreID, &e.Kind, &e.Title, &e.MediaUrl, &e.OfferID,
		&e.SortOrder, &e.IsActive, &e.CreatedAt)
	return e, err
}

type UpdateExploreItemParams struct {
	ID        uuid.UUID
	Title     string
	MediaUrl  string
	SortOrder int32
}

const updateExploreItem = `
UPDATE explore_items
SET title = $2, media_url = $3, sort_order = $4
WHERE id = $1 AND is_active = true
RETURNING id, store_id, kind, title, media_url, offer_id, sort_order, is_active, created_at
`

func (q *Queries) UpdateExploreItem(ctx context.Context, arg UpdateExploreItemParams) (ExploreItem, error) {
	row := q.db.QueryRow(ctx, updateExploreItem, arg.ID, arg.Title, arg.MediaUrl, arg.SortOrder)
	var e ExploreItem
	err := row.Scan(&e.ID, &e.StoreID, &e.Kind, &e.Title, &e.MediaUrl, &e.OfferID,
		&e.SortOrder, &e.IsActive, &e.CreatedAt)
	return e, err
}

const deleteExploreItem = `
UPDATE explore_items
SET is_active = false
WHERE id = $1
`

func (q *Queries) DeleteExploreItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteExploreItem, id)
	return err
}
