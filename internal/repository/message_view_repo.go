package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"messagesapp/internal/model"
	"messagesapp/internal/paging"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageViewRepository interface {
	// QueryPage opens a cursor over the pre-joined message view for one
	// recipient. The archived filter and the id bounds are part of the query
	// predicate, not applied client-side.
	QueryPage(ctx context.Context, fiscalCode string, archived bool, maximumID, minimumID string, pageSize int) (paging.Cursor[model.MessageView], error)
}

type messageViewRepo struct {
	pool *pgxpool.Pool
}

func NewMessageViewRepo(pool *pgxpool.Pool) MessageViewRepository {
	return &messageViewRepo{pool: pool}
}

func (r *messageViewRepo) QueryPage(ctx context.Context, fiscalCode string, archived bool, maximumID, minimumID string, pageSize int) (paging.Cursor[model.MessageView], error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}
	return &messageViewCursor{
		pool:       r.pool,
		fiscalCode: fiscalCode,
		archived:   archived,
		batchSize:  pageSize,
		maximumID:  maximumID,
		minimumID:  minimumID,
	}, nil
}

type messageViewCursor struct {
	pool       *pgxpool.Pool
	fiscalCode string
	archived   bool
	batchSize  int
	maximumID  string
	minimumID  string
	lastID     string
	done       bool
}

func (c *messageViewCursor) Next(ctx context.Context) ([]paging.Item[model.MessageView], bool, error) {
	if c.done {
		return nil, false, nil
	}

	upperBound := c.maximumID
	if c.lastID != "" {
		upperBound = c.lastID
	}

	query := `
		SELECT id, doc FROM message_view
		WHERE fiscal_code = $1
		  AND (doc -> 'status' ->> 'archived')::boolean = $2
		  AND ($3 = '' OR id < $3)
		  AND ($4 = '' OR id > $4)
		ORDER BY id DESC
		LIMIT $5
	`
	rows, err := c.pool.Query(ctx, query, c.fiscalCode, c.archived, upperBound, c.minimumID, c.batchSize)
	if err != nil {
		return nil, false, fmt.Errorf("querying message view: %w", err)
	}
	defer rows.Close()

	var batch []paging.Item[model.MessageView]
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, false, fmt.Errorf("scanning message view row: %w", err)
		}
		c.lastID = id

		var view model.MessageView
		if err := json.Unmarshal(doc, &view); err != nil {
			batch = append(batch, paging.Fail[model.MessageView](fmt.Errorf("decoding message view %s: %w", id, err)))
			continue
		}
		batch = append(batch, paging.Ok(view))
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating message view rows: %w", err)
	}

	if len(batch) == 0 {
		c.done = true
		return nil, false, nil
	}
	if len(batch) < c.batchSize {
		c.done = true
	}
	return batch, true, nil
}
