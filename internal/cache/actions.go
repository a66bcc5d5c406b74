package cache

import (
	"database/sql"
	"time"
)

// Action is a pending or settled outbox entry for a side-effecting
// backend call (call initiation, WhatsApp send, email send).
type Action struct {
	ID             int64
	ClientActionID string
	Kind           string
	Payload        []byte
	Status         string // queued, sending, sent, failed
	ErrorMessage   string
	ServerID       string
}

// QueueAction adds an action to the send outbox.
func (db *DB) QueueAction(clientActionID, kind string, payload []byte) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO actions (client_action_id, kind, payload, status, created_at, updated_at)
		VALUES (?, ?, ?, 'queued', ?, ?)`,
		clientActionID, kind, string(payload), now, now)
	return err
}

// MarkActionSending updates an outbox entry to 'sending' status.
func (db *DB) MarkActionSending(clientActionID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE actions SET status = 'sending', updated_at = ? WHERE client_action_id = ?`, now, clientActionID)
	return err
}

// MarkActionSent updates an outbox entry to 'sent' with the server-side ID.
func (db *DB) MarkActionSent(clientActionID, serverID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE actions SET status = 'sent', server_id = ?, updated_at = ? WHERE client_action_id = ?`, serverID, now, clientActionID)
	return err
}

// MarkActionFailed updates an outbox entry to 'failed' with an error message.
func (db *DB) MarkActionFailed(clientActionID, errMsg string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE actions SET status = 'failed', error_message = ?, updated_at = ? WHERE client_action_id = ?`, errMsg, now, clientActionID)
	return err
}

// PendingActions returns outbox entries that are still queued.
func (db *DB) PendingActions() ([]Action, error) {
	rows, err := db.Query(`
		SELECT id, client_action_id, kind, payload, status, error_message, server_id
		FROM actions WHERE status = 'queued' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var actions []Action
	for rows.Next() {
		var a Action
		var payload string
		if err := rows.Scan(&a.ID, &a.ClientActionID, &a.Kind, &payload, &a.Status, &a.ErrorMessage, &a.ServerID); err != nil {
			return nil, err
		}
		a.Payload = []byte(payload)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// GetAction returns a single outbox entry by client action ID, or nil.
func (db *DB) GetAction(clientActionID string) (*Action, error) {
	var a Action
	var payload string
	err := db.QueryRow(`
		SELECT id, client_action_id, kind, payload, status, error_message, server_id
		FROM actions WHERE client_action_id = ?`, clientActionID).
		Scan(&a.ID, &a.ClientActionID, &a.Kind, &payload, &a.Status, &a.ErrorMessage, &a.ServerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Payload = []byte(payload)
	return &a, nil
}
