package diary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists diary entries in PostgreSQL. Emotion tags live in a
// text[] column; the daily aggregation unnests it server-side.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed diary store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("entry id and user id are required")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO diary_entries (id, user_id, entry_date, content, emotions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.Date, entry.Content, entry.Emotions, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create diary entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, from, to string) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, entry_date::text, content, emotions, created_at
		 FROM diary_entries
		 WHERE user_id = $1
		   AND ($2 = '' OR entry_date >= $2::date)
		   AND ($3 = '' OR entry_date <= $3::date)
		 ORDER BY entry_date`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Content, &entry.Emotions, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diary entry: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountEmotionsByDay(ctx context.Context, userID string, from, to string) ([]EmotionCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT entry_date::text, emotion, count(*)
		 FROM diary_entries, unnest(emotions) AS emotion
		 WHERE user_id = $1
		   AND ($2 = '' OR entry_date >= $2::date)
		   AND ($3 = '' OR entry_date <= $3::date)
		 GROUP BY entry_date, emotion
		 ORDER BY entry_date, emotion`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count emotions: %w", err)
	}
	defer rows.Close()

	var out []EmotionCount
	for rows.Next() {
		var c EmotionCount
		if err := rows.Scan(&c.Date, &c.Emotion, &c.Count); err != nil {
			return nil, fmt.Errorf("scan emotion count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
