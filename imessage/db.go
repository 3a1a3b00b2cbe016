package imessage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jsloan/typedstream"
)

// AppleEpoch is the reference instant ("2001-01-01 00:00:00 UTC") that
// Apple's Cocoa frameworks count seconds (or nanoseconds, since iOS 11)
// from. chat.db timestamp columns are stored relative to this epoch
// rather than the Unix epoch.
var AppleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// CocoaTime converts a raw chat.db timestamp column into a time.Time.
// Timestamps written by macOS 10.12/iOS 11 and later are nanoseconds
// since [AppleEpoch]; older rows are whole seconds. A value is treated as
// nanosecond-resolution once it is large enough that interpreting it as
// seconds would land far beyond the present day.
func CocoaTime(raw int64) time.Time {
	if raw == 0 {
		return time.Time{}
	}
	const secondsThreshold = 1 << 34 // far past any plausible seconds-since-epoch value
	if raw >= secondsThreshold || raw <= -secondsThreshold {
		return AppleEpoch.Add(time.Duration(raw) * time.Nanosecond)
	}
	return AppleEpoch.Add(time.Duration(raw) * time.Second)
}

// Handle is a contact identity: a phone number or email address
// associated with one or more chats.
type Handle struct {
	ID      int64
	Address string
	Service string
}

// Chat is a conversation, either one-to-one or a group thread.
type Chat struct {
	ID          int64
	GUID        string
	DisplayName string
	Service     string
}

// Message is one row of the message table. AttributedBody carries the
// raw typedstream-serialized NSAttributedString payload, when present.
// Text is the plain-text column chat.db also stores alongside it, when
// the sender's client populated it; PlainText is filled in by [DB.Messages]
// from AttributedBody when Text is empty, using the first decoded value
// that yields one via [typedstream.Archivable.StringValue].
type Message struct {
	ID             int64
	GUID           string
	Text           string
	PlainText      string
	AttributedBody []byte
	HandleID       int64
	ChatID         int64
	IsFromMe       bool
	Date           time.Time
}

// DB is a read-only handle onto an iMessage chat.db database.
type DB struct {
	sql *sql.DB
}

// Open opens the chat.db SQLite file at path. The returned DB must be
// closed with [DB.Close] when no longer needed.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("imessage: open %s: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("imessage: ping %s: %w", path, err)
	}
	return &DB{sql: sqlDB}, nil
}

// Close releases the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Chats lists every conversation in the database.
func (d *DB) Chats(ctx context.Context) ([]Chat, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT ROWID, guid, COALESCE(display_name, ''), COALESCE(service_name, '')
		FROM chat
		ORDER BY ROWID`)
	if err != nil {
		return nil, fmt.Errorf("imessage: query chats: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.GUID, &c.DisplayName, &c.Service); err != nil {
			return nil, fmt.Errorf("imessage: scan chat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Handles lists the contact identities participating in chatID.
func (d *DB) Handles(ctx context.Context, chatID int64) ([]Handle, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT h.ROWID, h.id, COALESCE(h.service, '')
		FROM handle h
		JOIN chat_handle_join chj ON chj.handle_id = h.ROWID
		WHERE chj.chat_id = ?
		ORDER BY h.ROWID`, chatID)
	if err != nil {
		return nil, fmt.Errorf("imessage: query handles for chat %d: %w", chatID, err)
	}
	defer rows.Close()

	var out []Handle
	for rows.Next() {
		var h Handle
		if err := rows.Scan(&h.ID, &h.Address, &h.Service); err != nil {
			return nil, fmt.Errorf("imessage: scan handle: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Messages lists every message belonging to chatID, oldest first. When a
// row's text column is empty but it carries an AttributedBody, Messages
// decodes it with [typedstream.Decode] and fills PlainText from the first
// value with a usable [typedstream.Archivable.StringValue]. A decode
// failure or an archive with no plain string is not an error — PlainText
// is simply left empty, since attributedBody payloads the sender's client
// didn't mirror into text are common and not a hard failure for a reader.
func (d *DB) Messages(ctx context.Context, chatID int64) ([]Message, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT m.ROWID, m.guid, COALESCE(m.text, ''), m.attributedBody,
		       COALESCE(m.handle_id, 0), cmj.chat_id, m.is_from_me, m.date
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE cmj.chat_id = ?
		ORDER BY m.date ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("imessage: query messages for chat %d: %w", chatID, err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var rawDate int64
		var isFromMe int64
		if err := rows.Scan(&m.ID, &m.GUID, &m.Text, &m.AttributedBody,
			&m.HandleID, &m.ChatID, &isFromMe, &rawDate); err != nil {
			return nil, fmt.Errorf("imessage: scan message: %w", err)
		}
		m.IsFromMe = isFromMe != 0
		m.Date = CocoaTime(rawDate)
		if m.Text == "" && len(m.AttributedBody) > 0 {
			m.PlainText = plainTextFromAttributedBody(m.AttributedBody)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// plainTextFromAttributedBody decodes a typedstream-serialized
// NSAttributedString and returns the first string value that passes
// [typedstream.Archivable.StringValue]'s filter, or "" if decoding fails
// or no value qualifies.
func plainTextFromAttributedBody(blob []byte) string {
	vals, err := typedstream.Decode(blob)
	if err != nil {
		return ""
	}
	for _, v := range vals {
		if text, ok := v.StringValue(); ok {
			return text
		}
	}
	return ""
}
