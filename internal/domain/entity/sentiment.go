package entity

import "time"

// SentimentScore classifies the tone of a chat exchange.
type SentimentScore string

const (
	SentimentPositive SentimentScore = "Positive"
	SentimentNeutral  SentimentScore = "Neutral"
	SentimentNegative SentimentScore = "Negative"
)

// ChatSentiment is an append-only record of how a chat session with
// the shopping agent went, kept in its own table for the admin view.
type ChatSentiment struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	UserName    string         `json:"user_name"`
	Timestamp   time.Time      `json:"timestamp"`
	Score       SentimentScore `json:"score"`
	Summary     string         `json:"summary"`
	RawMessages int            `json:"raw_messages"`
}
