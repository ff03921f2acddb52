package models

import "time"

// InboundMessage is what the message channel delivers to the core.
type InboundMessage struct {
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	MediaRefs []string  `json:"mediaRefs,omitempty"`
}

// OutboundMessage is one reply payload handed back to the channel for
// delivery. Replies for a single inbound message are ordered.
type OutboundMessage struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	// Attachment carries an optional structured payload (offer list, booking
	// summary) for channels that can render more than plain text.
	Attachment any `json:"attachment,omitempty"`
}
