package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/models"
	"maragu.dev/goqite"
)

// Client is the atomic claim/ack protocol. It is a thin wrapper: the
// url_queue table is the source of truth for status and counters, and a
// goqite message queue on top of it hands out one message per row, each
// leased for goqite's visibility timeout. A message whose lease expires
// is delivered again, but Claim only claims a row whose status is in the
// filter and whose claimed_by is NULL, so a row left 'claimed' by a
// worker that never acked is not claimed again: its redelivered message
// is deleted and the row stays claimed.
type Client struct {
	db     *sql.DB
	q      *goqite.Queue
	logger arbor.ILogger
}

// queueMessage is the goqite message body: a pointer to a url_queue row.
type queueMessage struct {
	ID int64 `json:"id"`
}

// New creates a Client backed by db, creating the goqite schema/queue on
// first use.
func New(ctx context.Context, db *sql.DB, queueName string, logger arbor.ILogger) (*Client, error) {
	if err := goqite.Setup(ctx, db); err != nil {
		if !isAlreadyExists(err) {
			return nil, fmt.Errorf("setting up queue schema: %w", err)
		}
	}

	q := goqite.New(goqite.NewOpts{
		DB:   db,
		Name: queueName,
	})

	return &Client{db: db, q: q, logger: logger}, nil
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// Enqueue inserts a new pending row and publishes a claim message for it.
func (c *Client) Enqueue(ctx context.Context, url string, productTypeID string) (int64, error) {
	now := time.Now().Unix()
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO url_queue (url, product_type_id, processing_status, retry_count, updated_at)
		VALUES (?, ?, 'pending', 0, ?)
	`, url, productTypeID, now)
	if err != nil {
		return 0, fmt.Errorf("inserting url_queue row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}

	body, err := json.Marshal(queueMessage{ID: id})
	if err != nil {
		return 0, fmt.Errorf("marshaling queue message: %w", err)
	}
	if err := c.q.Send(ctx, goqite.Message{Body: body}); err != nil {
		return 0, fmt.Errorf("publishing queue message: %w", err)
	}
	return id, nil
}

// ResolveOffset converts a DB_URL_OFFSET row count into the id-based
// min_id cursor Claim expects: the id of the (offset+1)th row ordered by
// id. An offset of 0 (or less) skips nothing. An offset past the end of
// the table returns a cursor no row can satisfy, skipping everything.
func (c *Client) ResolveOffset(ctx context.Context, offset int) (int64, error) {
	if offset <= 0 {
		return 0, nil
	}
	var id int64
	err := c.db.QueryRowContext(ctx, `SELECT id FROM url_queue ORDER BY id LIMIT 1 OFFSET ?`, offset).Scan(&id)
	if err == sql.ErrNoRows {
		return math.MaxInt64, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resolving DB_URL_OFFSET cursor: %w", err)
	}
	return id, nil
}

// ClaimedRecord pairs a claimed URLRecord with the goqite message id needed
// to ack() it later.
type ClaimedRecord struct {
	Record    models.URLRecord
	MessageID goqite.ID
}

// Claim implements claim_product_page_urls(batch_size, worker_id,
// status_filters, min_id): drains up to batch_size messages, atomically
// transitioning each matching row to 'claimed'. Rows that no longer match
// (already claimed by a faster worker, or since moved to a terminal
// state) have their stale message deleted and are skipped — no two
// concurrent callers ever observe the same row, because the UPDATE's
// WHERE clause only succeeds for the single caller that wins the
// claimed_by IS NULL race.
func (c *Client) Claim(ctx context.Context, batchSize int, workerID string, statusFilters []string, minID int64) ([]ClaimedRecord, error) {
	claimed := make([]ClaimedRecord, 0, batchSize)
	statusSet := make(map[string]bool, len(statusFilters))
	for _, s := range statusFilters {
		statusSet[s] = true
	}

	for len(claimed) < batchSize {
		msg, err := c.q.Receive(ctx)
		if err != nil {
			// Network/DB error: return what we have and let the worker
			// retry next cycle.
			c.logger.Debug().Err(err).Msg("queue receive failed, returning partial batch")
			break
		}
		if msg == nil {
			break // queue empty
		}

		var body queueMessage
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			c.logger.Warn().Err(err).Msg("dropping unparseable queue message")
			_ = c.q.Delete(ctx, msg.ID)
			continue
		}

		record, ok, err := c.tryClaimRow(ctx, body.ID, workerID, statusSet, minID)
		if err != nil {
			c.logger.Warn().Err(err).Int64("url_id", body.ID).Msg("claim transaction failed")
			continue
		}
		if !ok {
			// Row no longer eligible (wrong status, below min_id, or
			// already claimed) — the message is stale, drop it.
			_ = c.q.Delete(ctx, msg.ID)
			continue
		}

		claimed = append(claimed, ClaimedRecord{Record: record, MessageID: msg.ID})
	}

	return claimed, nil
}

// tryClaimRow performs the single-row conditional UPDATE that is the heart
// of the claim protocol.
func (c *Client) tryClaimRow(ctx context.Context, id int64, workerID string, statusSet map[string]bool, minID int64) (models.URLRecord, bool, error) {
	if id < minID {
		return models.URLRecord{}, false, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return models.URLRecord{}, false, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT processing_status FROM url_queue WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return models.URLRecord{}, false, nil
	}
	if err != nil {
		return models.URLRecord{}, false, err
	}
	if !statusSet[status] {
		return models.URLRecord{}, false, nil
	}

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, `
		UPDATE url_queue
		SET processing_status = 'claimed', claimed_by = ?, claimed_at = ?, updated_at = ?
		WHERE id = ? AND claimed_by IS NULL
	`, workerID, now, now, id)
	if err != nil {
		return models.URLRecord{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.URLRecord{}, false, err
	}
	if n == 0 {
		// Lost the race to another worker.
		return models.URLRecord{}, false, nil
	}

	record, err := scanRecord(tx.QueryRowContext(ctx, selectRecordSQL, id))
	if err != nil {
		return models.URLRecord{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return models.URLRecord{}, false, err
	}
	return record, true, nil
}

// AckFields are the terminal fields written by Ack.
type AckFields struct {
	Status        models.ProcessingStatus
	Success        *bool
	ProductsFound int
	ProductsSaved int
	ErrorMessage  string
	RetryCount    int
	LastStrategy  string
}

// Ack performs the conditional terminal update. It is idempotent: writing the same fields twice is a no-op the second
// time because the row is already in the target state. Terminal states
// (completed/failed) clear the claim; retrying also clears the claim so a
// different worker may pick the row up on a later cycle.
func (c *Client) Ack(ctx context.Context, claimed ClaimedRecord, fields AckFields) error {
	id := claimed.Record.ID
	now := time.Now().Unix()

	errMsg := fields.ErrorMessage
	if len(errMsg) > models.MaxErrorMessageLen {
		errMsg = errMsg[:models.MaxErrorMessageLen]
	}

	var successVal sql.NullBool
	if fields.Success != nil {
		successVal = sql.NullBool{Bool: *fields.Success, Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		UPDATE url_queue
		SET processing_status = ?,
		    claimed_by = NULL,
		    claimed_at = NULL,
		    processed_at = ?,
		    updated_at = ?,
		    success = ?,
		    products_found = ?,
		    products_saved = ?,
		    error_message = ?,
		    retry_count = ?,
		    last_strategy = ?
		WHERE id = ?
	`, string(fields.Status), now, now, successVal, fields.ProductsFound, fields.ProductsSaved, errMsg, fields.RetryCount, fields.LastStrategy, id)
	if err != nil {
		// Errors during ack are logged and swallowed. The row keeps its
		// claim; goqite redelivers its message once the lease expires,
		// and Claim then drops that message (see Client).
		c.logger.Warn().Err(err).Int64("url_id", id).Msg("ack failed, relying on stale-claim reaper")
		return nil
	}

	if fields.Status.Terminal() {
		if err := c.q.Delete(ctx, claimed.MessageID); err != nil {
			c.logger.Debug().Err(err).Int64("url_id", id).Msg("failed to delete queue message after terminal ack")
		}
	} else {
		// Retrying: delete this lease and re-publish so a (possibly
		// different) worker can claim it again on a later cycle.
		_ = c.q.Delete(ctx, claimed.MessageID)
		body, merr := json.Marshal(queueMessage{ID: id})
		if merr == nil {
			if err := c.q.Send(ctx, goqite.Message{Body: body}); err != nil {
				c.logger.Warn().Err(err).Int64("url_id", id).Msg("failed to republish retrying url")
			}
		}
	}

	return nil
}

const selectRecordSQL = `
	SELECT id, url, product_type_id, processing_status, retry_count,
	       claimed_by, claimed_at, processed_at, updated_at, success,
	       products_found, products_saved, error_message, last_strategy
	FROM url_queue WHERE id = ?
`

func scanRecord(row *sql.Row) (models.URLRecord, error) {
	var r models.URLRecord
	var status string
	var claimedBy sql.NullString
	var claimedAt, processedAt sql.NullInt64
	var updatedAt int64
	var success sql.NullBool

	if err := row.Scan(&r.ID, &r.URL, &r.ProductTypeID, &status, &r.RetryCount,
		&claimedBy, &claimedAt, &processedAt, &updatedAt, &success,
		&r.ProductsFound, &r.ProductsSaved, &r.ErrorMessage, &r.LastStrategy); err != nil {
		return r, err
	}

	r.ProcessingStatus = models.ProcessingStatus(status)
	r.UpdatedAt = time.Unix(updatedAt, 0)
	if claimedBy.Valid {
		v := claimedBy.String
		r.ClaimedBy = &v
	}
	if claimedAt.Valid {
		t := time.Unix(claimedAt.Int64, 0)
		r.ClaimedAt = &t
	}
	if processedAt.Valid {
		t := time.Unix(processedAt.Int64, 0)
		r.ProcessedAt = &t
	}
	if success.Valid {
		v := success.Bool
		r.Success = &v
	}
	return r, nil
}
