package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/twinterview/backend/internal/model/chat"
	"github.com/twinterview/backend/internal/model/twin"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const pgUniqueViolation = "23505"

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate applies the embedded schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// GetTwin retrieves a twin by identifier.
func (s *PostgresStore) GetTwin(ctx context.Context, id string) (twin.Twin, error) {
	return s.scanTwin(ctx, `SELECT id, COALESCE(user_id::text, ''), name, role_title, years_experience,
		skills, bio, public_slug, COALESCE(voice_id, ''), created_at FROM twins WHERE id = $1`, id)
}

// GetTwinBySlug retrieves a twin by its public slug.
func (s *PostgresStore) GetTwinBySlug(ctx context.Context, slug string) (twin.Twin, error) {
	return s.scanTwin(ctx, `SELECT id, COALESCE(user_id::text, ''), name, role_title, years_experience,
		skills, bio, public_slug, COALESCE(voice_id, ''), created_at FROM twins WHERE public_slug = $1`, slug)
}

func (s *PostgresStore) scanTwin(ctx context.Context, query string, arg any) (twin.Twin, error) {
	var t twin.Twin
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.UserID, &t.Name, &t.RoleTitle, &t.YearsExperience,
		&t.Skills, &t.Bio, &t.PublicSlug, &t.VoiceID, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return twin.Twin{}, ErrNotFound
	}
	if err != nil {
		return twin.Twin{}, fmt.Errorf("failed to load twin: %w", err)
	}
	return t, nil
}

// ListAnswers returns a twin's style examples in creation order.
func (s *PostgresStore) ListAnswers(ctx context.Context, twinID string) ([]twin.Answer, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, twin_id, question_type, question_text, answer_text, created_at
		FROM twin_answers WHERE twin_id = $1 ORDER BY created_at`, twinID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []twin.Answer
	for rows.Next() {
		var a twin.Answer
		if err := rows.Scan(&a.ID, &a.TwinID, &a.QuestionType, &a.QuestionText, &a.AnswerText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer row: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// CreateSession provisions a session bound to a twin.
func (s *PostgresStore) CreateSession(ctx context.Context, session chat.Session) (chat.Session, error) {
	err := s.pool.QueryRow(ctx, `INSERT INTO sessions (twin_id, employer_name)
		VALUES ($1, $2) RETURNING id, created_at`,
		session.TwinID, session.EmployerName,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return chat.Session{}, ErrNotFound
		}
		return chat.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *PostgresStore) GetSession(ctx context.Context, id string) (chat.Session, error) {
	var session chat.Session
	err := s.pool.QueryRow(ctx, `SELECT id, twin_id, employer_name, created_at
		FROM sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.TwinID, &session.EmployerName, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Session{}, ErrNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// SaveMessage appends a message to the session transcript.
func (s *PostgresStore) SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error) {
	err := s.pool.QueryRow(ctx, `INSERT INTO session_messages (session_id, sender, message_text)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		message.SessionID, message.Sender, message.Text,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return chat.Message{}, ErrNotFound
		}
		return chat.Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	return message, nil
}

// GetMessage retrieves a single message by identifier.
func (s *PostgresStore) GetMessage(ctx context.Context, id string) (chat.Message, error) {
	var m chat.Message
	err := s.pool.QueryRow(ctx, `SELECT id, session_id, sender, message_text, created_at
		FROM session_messages WHERE id = $1`, id,
	).Scan(&m.ID, &m.SessionID, &m.Sender, &m.Text, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, ErrNotFound
	}
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to load message: %w", err)
	}
	return m, nil
}

// ListMessages returns the session transcript ordered by creation time.
func (s *PostgresStore) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT id, session_id, sender, message_text, created_at
		FROM session_messages WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountMessagesBySender counts a session's messages from one sender.
// Read-then-compare against the cap happens at the orchestrator; no
// transactional reservation is made here.
func (s *PostgresStore) CountMessagesBySender(ctx context.Context, sessionID, sender string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM session_messages
		WHERE session_id = $1 AND sender = $2`, sessionID, sender,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// SaveFeedback records the employer's rating. The unique constraint on
// session_id enforces at most one per session.
func (s *PostgresStore) SaveFeedback(ctx context.Context, feedback chat.Feedback) (chat.Feedback, error) {
	var comment any
	if feedback.Comment != "" {
		comment = feedback.Comment
	}

	err := s.pool.QueryRow(ctx, `INSERT INTO session_feedback (session_id, rating, comment_text)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		feedback.SessionID, feedback.Rating, comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return chat.Feedback{}, ErrDuplicateFeedback
			case "23503":
				return chat.Feedback{}, ErrNotFound
			}
		}
		return chat.Feedback{}, fmt.Errorf("failed to save feedback: %w", err)
	}
	return feedback, nil
}
