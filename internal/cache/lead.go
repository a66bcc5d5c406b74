package cache

import (
	"encoding/json"
	"time"

	"github.com/abarbosa/atendo/internal/crm"
)

// UpsertLead inserts or updates a cached chat lead (keyed by phone).
func (db *DB) UpsertLead(l *crm.ChatLead) error {
	platforms, _ := json.Marshal(l.Platforms)
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO leads (phone, name, platforms, message_count, unread_count, last_message, last_message_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE leads.name END,
			platforms = excluded.platforms,
			message_count = excluded.message_count,
			unread_count = excluded.unread_count,
			last_message = excluded.last_message,
			last_message_at = MAX(leads.last_message_at, excluded.last_message_at),
			updated_at = excluded.updated_at`,
		l.Phone, l.Name, string(platforms), l.MessageCount, l.UnreadCount, l.LastMessage, l.LastMessageAt, now)
	return err
}

// TouchLeadPreview refreshes only a lead's denormalized last-message
// preview, leaving counters and platforms alone. Messages for a lead not
// yet cached create a minimal row. The preview text only moves forward:
// an older message never replaces a newer one.
func (db *DB) TouchLeadPreview(phone, lastMessage string, ts int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO leads (phone, name, platforms, message_count, unread_count, last_message, last_message_at, updated_at)
		VALUES (?, '', '[]', 0, 0, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			last_message = CASE WHEN excluded.last_message_at >= leads.last_message_at
				THEN excluded.last_message ELSE leads.last_message END,
			last_message_at = MAX(leads.last_message_at, excluded.last_message_at),
			updated_at = excluded.updated_at`,
		phone, lastMessage, ts, now)
	return err
}

// ListLeads returns cached leads sorted by last message timestamp descending.
func (db *DB) ListLeads(limit, offset int) ([]crm.ChatLead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT phone, name, platforms, message_count, unread_count, last_message, last_message_at
		FROM leads
		ORDER BY last_message_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var leads []crm.ChatLead
	for rows.Next() {
		var l crm.ChatLead
		var platforms string
		if err := rows.Scan(&l.Phone, &l.Name, &platforms, &l.MessageCount, &l.UnreadCount, &l.LastMessage, &l.LastMessageAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(platforms), &l.Platforms)
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// LeadCount returns the number of cached leads.
func (db *DB) LeadCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM leads`).Scan(&count)
	return count, err
}
