package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"messagesapp/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageStatusRepository interface {
	// FindLastVersionByMessageID resolves the authoritative (highest version)
	// status record for one message.
	FindLastVersionByMessageID(ctx context.Context, messageID string) (*model.MessageStatus, error)
	// FindLastVersionsByMessageIDIn resolves the authoritative status of each
	// given message in one query. Messages without any status record are
	// simply absent from the result map.
	FindLastVersionsByMessageIDIn(ctx context.Context, messageIDs []string) (map[string]model.MessageStatus, error)
	// Upsert appends a new version for the status' message id. The version
	// and the updated-at timestamp are assigned here; prior versions are
	// never touched.
	Upsert(ctx context.Context, status model.MessageStatus) (*model.MessageStatus, error)
}

type messageStatusRepo struct {
	pool *pgxpool.Pool
}

func NewMessageStatusRepo(pool *pgxpool.Pool) MessageStatusRepository {
	return &messageStatusRepo{pool: pool}
}

func (r *messageStatusRepo) FindLastVersionByMessageID(ctx context.Context, messageID string) (*model.MessageStatus, error) {
	query := `
		SELECT doc FROM message_status
		WHERE message_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var doc []byte
	err := r.pool.QueryRow(ctx, query, messageID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message status %s: %w", messageID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying message status: %w", err)
	}
	var status model.MessageStatus
	if err := json.Unmarshal(doc, &status); err != nil {
		return nil, fmt.Errorf("decoding message status document: %w", err)
	}
	return &status, nil
}

func (r *messageStatusRepo) FindLastVersionsByMessageIDIn(ctx context.Context, messageIDs []string) (map[string]model.MessageStatus, error) {
	statuses := make(map[string]model.MessageStatus, len(messageIDs))
	if len(messageIDs) == 0 {
		return statuses, nil
	}

	query := `
		SELECT DISTINCT ON (message_id) message_id, doc
		FROM message_status
		WHERE message_id = ANY($1)
		ORDER BY message_id, version DESC
	`
	rows, err := r.pool.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("querying message statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			messageID string
			doc       []byte
		)
		if err := rows.Scan(&messageID, &doc); err != nil {
			return nil, fmt.Errorf("scanning message status row: %w", err)
		}
		var status model.MessageStatus
		if err := json.Unmarshal(doc, &status); err != nil {
			return nil, fmt.Errorf("decoding message status %s: %w", messageID, err)
		}
		statuses[messageID] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message status rows: %w", err)
	}
	return statuses, nil
}

func (r *messageStatusRepo) Upsert(ctx context.Context, status model.MessageStatus) (*model.MessageStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning status upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent upserts of the same message, so MAX(version)+1
	// stays gapless and collision-free. The lock is released at commit.
	if _, err := tx.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtext('message_status:' || $1))
	`, status.MessageID); err != nil {
		return nil, fmt.Errorf("locking message status: %w", err)
	}

	var version int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version) + 1, 0) FROM message_status
		WHERE message_id = $1
	`, status.MessageID).Scan(&version)
	if err != nil {
		return nil, fmt.Errorf("computing next status version: %w", err)
	}

	status.Version = version
	status.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("marshaling message status: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO message_status (message_id, version, doc)
		VALUES ($1, $2, $3)
	`, status.MessageID, status.Version, doc); err != nil {
		return nil, fmt.Errorf("inserting message status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing status upsert: %w", err)
	}
	return &status, nil
}
