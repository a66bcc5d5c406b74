package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abarbosa/atendo/internal/crm"
)

// UpsertContact inserts or updates a cached contact.
func (db *DB) UpsertContact(c *crm.Contact) error {
	tags, _ := json.Marshal(c.Tags)
	var lastContacted int64
	if c.LastContactedAt != nil {
		lastContacted = c.LastContactedAt.UnixMilli()
	}
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO contacts (id, name, phone, email, company, tags, lead_stage, call_type, source,
			city, country, last_call_status, last_contacted_at, call_attempts, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			company = excluded.company,
			tags = excluded.tags,
			lead_stage = excluded.lead_stage,
			call_type = excluded.call_type,
			source = excluded.source,
			city = excluded.city,
			country = excluded.country,
			last_call_status = excluded.last_call_status,
			last_contacted_at = excluded.last_contacted_at,
			call_attempts = excluded.call_attempts,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.Phone, c.Email, c.Company, string(tags), c.LeadStage, c.CallType, c.Source,
		c.City, c.Country, c.LastCallStatus, lastContacted, c.CallAttempts, c.Notes, now)
	return err
}

// BulkUpsertContacts upserts a batch of contacts in a single transaction.
func (db *DB) BulkUpsertContacts(contacts []crm.Contact) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, c := range contacts {
		tags, _ := json.Marshal(c.Tags)
		var lastContacted int64
		if c.LastContactedAt != nil {
			lastContacted = c.LastContactedAt.UnixMilli()
		}
		if _, err := tx.Exec(`
			INSERT INTO contacts (id, name, phone, email, company, tags, lead_stage, call_type, source,
				city, country, last_call_status, last_contacted_at, call_attempts, notes, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				phone = excluded.phone,
				email = excluded.email,
				company = excluded.company,
				tags = excluded.tags,
				lead_stage = excluded.lead_stage,
				call_type = excluded.call_type,
				source = excluded.source,
				city = excluded.city,
				country = excluded.country,
				last_call_status = excluded.last_call_status,
				last_contacted_at = excluded.last_contacted_at,
				call_attempts = excluded.call_attempts,
				notes = excluded.notes,
				updated_at = excluded.updated_at`,
			c.ID, c.Name, c.Phone, c.Email, c.Company, string(tags), c.LeadStage, c.CallType, c.Source,
			c.City, c.Country, c.LastCallStatus, lastContacted, c.CallAttempts, c.Notes, now); err != nil {
			return fmt.Errorf("upsert contact %q: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func scanContact(scan func(...any) error) (*crm.Contact, error) {
	var c crm.Contact
	var tags string
	var lastContacted int64
	if err := scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Company, &tags, &c.LeadStage, &c.CallType,
		&c.Source, &c.City, &c.Country, &c.LastCallStatus, &lastContacted, &c.CallAttempts, &c.Notes); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tags), &c.Tags)
	if lastContacted > 0 {
		t := time.UnixMilli(lastContacted)
		c.LastContactedAt = &t
	}
	return &c, nil
}

const contactColumns = `id, name, phone, email, company, tags, lead_stage, call_type, source,
	city, country, last_call_status, last_contacted_at, call_attempts, notes`

// ListContacts returns cached contacts ordered by name.
func (db *DB) ListContacts(limit, offset int) ([]crm.Contact, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT `+contactColumns+`
		FROM contacts
		ORDER BY name COLLATE NOCASE ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var contacts []crm.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// GetContact returns a cached contact by ID, or nil if absent.
func (db *DB) GetContact(id string) (*crm.Contact, error) {
	row := db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteContact removes a contact from the cache.
func (db *DB) DeleteContact(id string) error {
	_, err := db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	return err
}

// ContactCount returns the number of cached contacts.
func (db *DB) ContactCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&count)
	return count, err
}
