// Package diary stores dated journal entries with emotion tags and serves the
// daily emotion counts the insights view is built on. The auth core installs
// the session this package trusts.
package diary

import "time"

// Entry is one dated diary entry.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Date      string    `json:"date"` // YYYY-MM-DD, the user's journal day
	Content   string    `json:"content"`
	Emotions  []string  `json:"emotions"`
	CreatedAt time.Time `json:"created_at"`
}

// EmotionCount is one (day, emotion) bucket of the daily aggregation.
type EmotionCount struct {
	Date    string `json:"date"`
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}
