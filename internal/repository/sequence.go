package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SequenceGenerator выдаёт уникальные номера тендеров, в том числе при конкурентных вызовах.
type SequenceGenerator interface {
	NextTenderNo(ctx context.Context) (string, error)
}

func formatSequence(prefix string, padding int, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, padding, n)
}

// PostgresSequence использует последовательность tender_no_seq.
type PostgresSequence struct {
	DB      *pgxpool.Pool
	Prefix  string
	Padding int
}

// NewPostgresSequence создаёт генератор номеров на основе последовательности Postgres.
func NewPostgresSequence(db *pgxpool.Pool, prefix string, padding int) *PostgresSequence {
	return &PostgresSequence{DB: db, Prefix: prefix, Padding: padding}
}

func (s *PostgresSequence) NextTenderNo(ctx context.Context) (string, error) {
	var n int64
	if err := s.DB.QueryRow(ctx, `SELECT nextval('tender_no_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to get next tender number: %w", err)
	}
	return formatSequence(s.Prefix, s.Padding, n), nil
}

// RedisSequence использует атомарный INCR по ключу счётчика.
type RedisSequence struct {
	Client  *redis.Client
	Key     string
	Prefix  string
	Padding int
}

const tenderSequenceKey = "sequence:tender_no"

// NewRedisSequence создаёт генератор номеров на основе Redis.
func NewRedisSequence(client *redis.Client, prefix string, padding int) *RedisSequence {
	return &RedisSequence{Client: client, Key: tenderSequenceKey, Prefix: prefix, Padding: padding}
}

func (s *RedisSequence) NextTenderNo(ctx context.Context) (string, error) {
	n, err := s.Client.Incr(ctx, s.Key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get next tender number: %w", err)
	}
	return formatSequence(s.Prefix, s.Padding, n), nil
}

// MemorySequence - счётчик в памяти процесса.
type MemorySequence struct {
	counter atomic.Int64
	Prefix  string
	Padding int
}

// NewMemorySequence создаёт генератор номеров в памяти.
func NewMemorySequence(prefix string, padding int) *MemorySequence {
	return &MemorySequence{Prefix: prefix, Padding: padding}
}

func (s *MemorySequence) NextTenderNo(_ context.Context) (string, error) {
	return formatSequence(s.Prefix, s.Padding, s.counter.Add(1)), nil
}
