package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"messagesapp/internal/model"
	"messagesapp/internal/paging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound reports a document missing from its store.
var ErrNotFound = errors.New("document not found")

type MessageRepository interface {
	// FindMessages opens a forward-only cursor over the recipient's messages
	// in descending id order, bounded by the optional id cursors. Rows that
	// fail document decoding surface as failed items, not query errors.
	FindMessages(ctx context.Context, fiscalCode string, pageSize int, maximumID, minimumID string) (paging.Cursor[model.Message], error)
	FindMessageForRecipient(ctx context.Context, fiscalCode, messageID string) (*model.Message, error)
}

type messageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) FindMessages(ctx context.Context, fiscalCode string, pageSize int, maximumID, minimumID string) (paging.Cursor[model.Message], error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}
	return &messageCursor{
		pool:       r.pool,
		fiscalCode: fiscalCode,
		batchSize:  pageSize,
		maximumID:  maximumID,
		minimumID:  minimumID,
	}, nil
}

func (r *messageRepo) FindMessageForRecipient(ctx context.Context, fiscalCode, messageID string) (*model.Message, error) {
	query := `
		SELECT doc FROM messages
		WHERE fiscal_code = $1 AND id = $2
	`
	var doc []byte
	err := r.pool.QueryRow(ctx, query, fiscalCode, messageID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying message: %w", err)
	}
	var message model.Message
	if err := json.Unmarshal(doc, &message); err != nil {
		return nil, fmt.Errorf("decoding message document: %w", err)
	}
	return &message, nil
}

// messageCursor pulls one keyset-bounded batch per Next call. It is not
// restartable: the keyset advances past every row handed out, including ones
// that failed to decode.
type messageCursor struct {
	pool       *pgxpool.Pool
	fiscalCode string
	batchSize  int
	maximumID  string
	minimumID  string
	lastID     string
	done       bool
}

func (c *messageCursor) Next(ctx context.Context) ([]paging.Item[model.Message], bool, error) {
	if c.done {
		return nil, false, nil
	}

	upperBound := c.maximumID
	if c.lastID != "" {
		upperBound = c.lastID
	}

	query := `
		SELECT id, doc FROM messages
		WHERE fiscal_code = $1
		  AND ($2 = '' OR id < $2)
		  AND ($3 = '' OR id > $3)
		ORDER BY id DESC
		LIMIT $4
	`
	rows, err := c.pool.Query(ctx, query, c.fiscalCode, upperBound, c.minimumID, c.batchSize)
	if err != nil {
		return nil, false, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var batch []paging.Item[model.Message]
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, false, fmt.Errorf("scanning message row: %w", err)
		}
		c.lastID = id

		var message model.Message
		if err := json.Unmarshal(doc, &message); err != nil {
			batch = append(batch, paging.Fail[model.Message](fmt.Errorf("decoding message %s: %w", id, err)))
			continue
		}
		batch = append(batch, paging.Ok(message))
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating message rows: %w", err)
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
