package imessage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// openTestDB builds an in-memory chat.db-shaped schema so DB's queries
// can be exercised without a real device backup.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	raw, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}

	schema := `
		CREATE TABLE chat (ROWID INTEGER PRIMARY KEY, guid TEXT, display_name TEXT, service_name TEXT);
		CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT, service TEXT);
		CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY, guid TEXT, text TEXT, attributedBody BLOB,
			handle_id INTEGER, date INTEGER, is_from_me INTEGER
		);
		CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER);
		CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER);
	`
	if _, err := raw.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	if _, err := raw.Exec(`INSERT INTO chat VALUES (1, 'chat-guid-1', 'Friends', 'iMessage')`); err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	if _, err := raw.Exec(`INSERT INTO handle VALUES (1, '+15551234567', 'iMessage')`); err != nil {
		t.Fatalf("seed handle: %v", err)
	}
	if _, err := raw.Exec(`INSERT INTO message VALUES (1, 'msg-guid-1', 'hello', NULL, 1, 0, 0)`); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if _, err := raw.Exec(`INSERT INTO message VALUES (2, 'msg-guid-2', '', ?, 1, 1, 0)`, attributedStringFixture("Hi")); err != nil {
		t.Fatalf("seed attributed message: %v", err)
	}
	if _, err := raw.Exec(`INSERT INTO chat_message_join VALUES (1, 1), (1, 2)`); err != nil {
		t.Fatalf("seed join: %v", err)
	}
	if _, err := raw.Exec(`INSERT INTO chat_handle_join VALUES (1, 1)`); err != nil {
		t.Fatalf("seed handle join: %v", err)
	}

	t.Cleanup(func() { raw.Close() })
	return &DB{sql: raw}
}

// attributedStringFixture builds a minimal typedstream archive decoding to
// a single NSString instance carrying s, the same shape Messages.app
// writes into attributedBody for a plain-text message.
func attributedStringFixture(s string) []byte {
	b := []byte{0x04, 0x0B}
	b = append(b, []byte("streamtyped")...)
	b = append(b, 0x81, 0xE8, 0x03) // sysVersion=1000, I_16

	b = append(b, 0x84, 0x01, 0x40)          // type list: object
	b = append(b, 0x84, 0x08)                // class chain, 1 level
	b = append(b, []byte("NSString")...)     // class name
	b = append(b, 0x01, 0x85)                // version=1, end of chain

	b = append(b, 0x84, 0x01, 0x2B) // type list: utf8_string
	b = append(b, byte(len(s)))
	b = append(b, []byte(s)...)
	return b
}

func TestDBChats(t *testing.T) {
	db := openTestDB(t)
	chats, err := db.Chats(context.Background())
	if err != nil {
		t.Fatalf("Chats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
	if chats[0].DisplayName != "Friends" {
		t.Fatalf("unexpected chat: %+v", chats[0])
	}
}

func TestDBHandles(t *testing.T) {
	db := openTestDB(t)
	handles, err := db.Handles(context.Background(), 1)
	if err != nil {
		t.Fatalf("Handles: %v", err)
	}
	if len(handles) != 1 || handles[0].Address != "+15551234567" {
		t.Fatalf("unexpected handles: %+v", handles)
	}
}

func TestDBHandlesUnknownChat(t *testing.T) {
	db := openTestDB(t)
	handles, err := db.Handles(context.Background(), 999)
	if err != nil {
		t.Fatalf("Handles: %v", err)
	}
	if len(handles) != 0 {
		t.Fatalf("expected no handles, got %d", len(handles))
	}
}

func TestDBMessages(t *testing.T) {
	db := openTestDB(t)
	msgs, err := db.Messages(context.Background(), 1)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "hello" || msgs[0].IsFromMe {
		t.Fatalf("unexpected message: %+v", msgs[0])
	}
}

func TestDBMessagesDecodesAttributedBody(t *testing.T) {
	db := openTestDB(t)
	msgs, err := db.Messages(context.Background(), 1)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Text != "" {
		t.Fatalf("expected empty text column, got %q", msgs[1].Text)
	}
	if msgs[1].PlainText != "Hi" {
		t.Fatalf("expected PlainText decoded from attributedBody, got %q", msgs[1].PlainText)
	}
}

func TestDBMessagesEmptyChat(t *testing.T) {
	db := openTestDB(t)
	msgs, err := db.Messages(context.Background(), 999)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestCocoaTimeZeroIsZeroValue(t *testing.T) {
	if !CocoaTime(0).IsZero() {
		t.Fatal("expected zero raw timestamp to produce the zero time")
	}
}

func TestCocoaTimeSecondsResolution(t *testing.T) {
	// 694267200 seconds after the Apple epoch is 2023-01-01 12:00 UTC.
	got := CocoaTime(694267200)
	want := AppleEpoch.Add(694267200 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCocoaTimeNanosecondResolution(t *testing.T) {
	raw := int64(694267200) * 1_000_000_000
	got := CocoaTime(raw)
	want := AppleEpoch.Add(time.Duration(raw) * time.Nanosecond)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
