package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/logger"
)

var messageColumns = []string{"id", "content", "departments", "created_at"}

// MessageRepository handles placement cell announcements
type MessageRepository struct {
	db db.DBTX
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(conn db.DBTX) *MessageRepository {
	return &MessageRepository{db: conn}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(&m.ID, &m.Content, &m.RawDepartments, &m.CreatedAt); err != nil {
		return nil, err
	}
	if set, ok := deptset.Decode(m.RawDepartments); ok {
		m.Departments = set
	} else {
		logger.Warn().Int64("messageID", m.ID).Msg("Message has an unreadable department set")
	}
	return &m, nil
}

// Create stores a message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) (int64, error) {
	departments, err := deptset.Encode(msg.Departments)
	if err != nil {
		return 0, fmt.Errorf("failed to encode departments: %w", err)
	}

	sql, args, err := psql.Insert("messages").
		Columns("content", "departments").
		Values(msg.Content, string(departments)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create message query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create message query")
		return 0, fmt.Errorf("error creating message: %w", err)
	}
	return msg.ID, nil
}

// GetByID retrieves a message
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	sql, args, err := psql.Select(messageColumns...).From("messages").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get message query: %w", err)
	}

	msg, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}
	return msg, nil
}

// List returns all messages, newest first
func (r *MessageRepository) List(ctx context.Context) ([]models.Message, error) {
	sql, args, err := psql.Select(messageColumns...).From("messages").OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

// Delete removes a message
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("messages").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete message query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}
