package cache

import (
	"time"

	"github.com/abarbosa/atendo/internal/crm"
)

// UpsertMessage inserts or updates a message (idempotent on lead_phone + msg_id).
func (db *DB) UpsertMessage(m *crm.Message) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (msg_id, lead_phone, sender, body, delivery_status, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lead_phone, msg_id) DO UPDATE SET
			body = excluded.body,
			delivery_status = excluded.delivery_status`,
		m.ID, m.LeadPhone, m.Sender, m.Text, m.DeliveryStatus, m.Timestamp, now)
	return err
}

// BulkUpsertMessages upserts a batch of messages in one transaction.
func (db *DB) BulkUpsertMessages(msgs []crm.Message) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, m := range msgs {
		if _, err := tx.Exec(`
			INSERT INTO messages (msg_id, lead_phone, sender, body, delivery_status, timestamp, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(lead_phone, msg_id) DO UPDATE SET
				body = excluded.body,
				delivery_status = excluded.delivery_status`,
			m.ID, m.LeadPhone, m.Sender, m.Text, m.DeliveryStatus, m.Timestamp, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMessages returns messages for a lead using keyset pagination by timestamp.
func (db *DB) ListMessages(leadPhone string, beforeTs int64, limit int) ([]crm.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	if beforeTs <= 0 {
		beforeTs = time.Now().UnixMilli() + 1
	}
	rows, err := db.Query(`
		SELECT msg_id, lead_phone, sender, body, delivery_status, timestamp
		FROM messages
		WHERE lead_phone = ? AND timestamp < ?
		ORDER BY timestamp DESC
		LIMIT ?`, leadPhone, beforeTs, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []crm.Message
	for rows.Next() {
		var m crm.Message
		if err := rows.Scan(&m.ID, &m.LeadPhone, &m.Sender, &m.Text, &m.DeliveryStatus, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message crm.Message
	Snippet string
}

// SearchMessages performs a full-text search on cached message bodies.
func (db *DB) SearchMessages(query string, leadPhone string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT m.msg_id, m.lead_phone, m.sender, m.body, m.delivery_status, m.timestamp,
		       snippet(messages_fts, 0, '<<', '>>', '...', 32)
		FROM messages_fts f
		JOIN messages m ON m.id = f.rowid
		WHERE messages_fts MATCH ?`

	args := []any{query}
	if leadPhone != "" {
		q += " AND m.lead_phone = ?"
		args = append(args, leadPhone)
	}
	q += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(
			&r.Message.ID, &r.Message.LeadPhone, &r.Message.Sender,
			&r.Message.Text, &r.Message.DeliveryStatus, &r.Message.Timestamp,
			&r.Snippet,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
