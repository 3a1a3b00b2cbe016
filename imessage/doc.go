// Package imessage reads messages, chats, and handles out of an iMessage
// chat.db SQLite database.
//
// Messages whose text column is empty but whose attributedBody column
// holds a typedstream payload have that payload decoded automatically
// via [github.com/jsloan/typedstream], with the first string value found
// attached as [Message.PlainText]. Callers who want the full decoded
// record set — not just the flattened string — or who want to run it
// through the [github.com/jsloan/typedstream/imessage/attrcache] cache
// wrapper, can still call typedstream.Decode on AttributedBody directly.
//
//	db, err := imessage.Open("chat.db")
//	msgs, err := db.Messages(ctx, chatID)
//	for _, m := range msgs {
//	    text := m.Text
//	    if text == "" {
//	        text = m.PlainText
//	    }
//	}
package imessage
