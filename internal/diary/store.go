package diary

import "context"

// Store persists diary entries per user.
//
// Error contract: stores return sentinel errors; the handler translates.
type Store interface {
	Create(ctx context.Context, entry *Entry) error
	ListByUser(ctx context.Context, userID string, from, to string) ([]*Entry, error)
	// CountEmotionsByDay aggregates emotion tags per journal day in [from, to].
	CountEmotionsByDay(ctx context.Context, userID string, from, to string) ([]EmotionCount, error)
}
