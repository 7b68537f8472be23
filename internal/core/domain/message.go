package domain

import "time"

// Message is one SMS/code delivered for a rental. Re-sent codes may produce
// multiple rows sharing a code; duplicates are collapsed at read time by
// keeping the most recent per code.
type Message struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	RentalID   string    `json:"rental_id" bson:"rental_id"`
	AccountID  string    `json:"account_id" bson:"account_id"`
	Code       string    `json:"code" bson:"code"`
	Text       string    `json:"text" bson:"text"`
	ReceivedAt time.Time `json:"received_at" bson:"received_at"`
}

// DedupMessages collapses messages sharing a code to the most recent one,
// preserving newest-first order. Input must already be sorted newest first.
func DedupMessages(msgs []*Message) []*Message {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.Code]; ok {
			continue
		}
		seen[m.Code] = struct{}{}
		out = append(out, m)
	}
	return out
}
