package chats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobprep-ai/jobprep/internal/llm"
)

type Repository interface {
	Create(ctx context.Context, chat *Chat) error
	GetByID(ctx context.Context, id int64) (*Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Chat, error)
	UpdateMessages(ctx context.Context, id int64, messages []llm.Message) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, chat *Chat) error {
	payload, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}

	query := `
		INSERT INTO chats (user_id, expert_type, messages, description, timestamp)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, timestamp`

	err = r.pool.QueryRow(ctx, query,
		chat.UserID, chat.ExpertType, payload, chat.Description).
		Scan(&chat.ID, &chat.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting chat: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Chat, error) {
	query := `
		SELECT id, user_id, expert_type, messages, description, timestamp
		FROM chats WHERE id = $1`

	chat := &Chat{}
	var payload []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&chat.ID, &chat.UserID, &chat.ExpertType, &payload, &chat.Description, &chat.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying chat by id: %w", err)
	}
	if err := json.Unmarshal(payload, &chat.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages: %w", err)
	}
	return chat, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Chat, error) {
	query := `
		SELECT id, user_id, expert_type, messages, description, timestamp
		FROM chats
		WHERE user_id = $1
		ORDER BY timestamp DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var chats []*Chat
	for rows.Next() {
		chat := &Chat{}
		var payload []byte
		err := rows.Scan(&chat.ID, &chat.UserID, &chat.ExpertType, &payload, &chat.Description, &chat.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scanning chat row: %w", err)
		}
		if err := json.Unmarshal(payload, &chat.Messages); err != nil {
			return nil, fmt.Errorf("unmarshaling messages: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *postgresRepository) UpdateMessages(ctx context.Context, id int64, messages []llm.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}

	query := `UPDATE chats SET messages = $2, timestamp = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("updating chat messages: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat not found")
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat not found")
	}
	return nil
}
