package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Memories() store.Memories   { return &memories{db: s.db} }
func (s *pgStore) Questions() store.Questions { return &questions{db: s.db} }
func (s *pgStore) Profiles() store.Profiles   { return &profiles{db: s.db} }
func (s *pgStore) Links() store.Links         { return &links{db: s.db} }
func (s *pgStore) Summaries() store.Summaries { return &summaries{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
// Schema setup is handled by deployment migrations, not at runtime.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil // No DSN configured, skip bootstrap
	}

	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.PingContext(ctx)
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func marshalStructured(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	return json.Marshal(m)
}

// --- Memories ---
type memories struct{ db *sql.DB }

func (m *memories) Create(ctx context.Context, mm *model.Memory) (*model.Memory, error) {
	id := mm.ID
	if id == "" {
		id = uuid.New().String()
	}
	typ := mm.Type
	if typ == "" {
		typ = model.MemoryTypeOther
	}
	tagsJSON, err := marshalTags(mm.Tags)
	if err != nil {
		return nil, err
	}
	structuredJSON, err := marshalStructured(mm.StructuredJSON)
	if err != nil {
		return nil, err
	}

	var created time.Time
	row := m.db.QueryRowContext(ctx, `
        INSERT INTO memories (memory_id, elder_id, raw_text, memory_type, tags, structured_json, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at
    `, id, mm.ElderID, mm.RawText, typ, tagsJSON, structuredJSON, mm.ImageURL)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *mm
	out.ID = id
	out.Type = typ
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.CreatedAt = created
	return &out, nil
}

func (m *memories) GetByID(ctx context.Context, elderID, memoryID string) (*model.Memory, error) {
	row := m.db.QueryRowContext(ctx, `
        SELECT memory_id, elder_id, raw_text, memory_type, tags, structured_json, image_url, created_at
        FROM memories WHERE elder_id=$1 AND memory_id=$2
    `, elderID, memoryID)
	out, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return out, err
}

func (m *memories) List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	q := `
        SELECT memory_id, elder_id, raw_text, memory_type, tags, structured_json, image_url, created_at
        FROM memories WHERE elder_id=$1`
	args := []interface{}{req.ElderID}
	if req.Type != "" {
		args = append(args, req.Type)
		q += fmt.Sprintf(" AND memory_type=$%d", len(args))
	}
	if req.Tag != "" {
		args = append(args, fmt.Sprintf("%q", req.Tag))
		q += fmt.Sprintf(" AND tags::jsonb @> $%d::jsonb", len(args))
	}
	if req.After != nil {
		args = append(args, *req.After)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if req.Before != nil {
		args = append(args, *req.Before)
		q += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	q += " ORDER BY created_at DESC"
	if req.Limit > 0 {
		args = append(args, req.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := m.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*model.Memory
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, mem)
	}
	return res, rows.Err()
}

func (m *memories) SetImageURL(ctx context.Context, elderID, memoryID, imageURL string) error {
	res, err := m.db.ExecContext(ctx, `
        UPDATE memories SET image_url=$1 WHERE elder_id=$2 AND memory_id=$3
    `, imageURL, elderID, memoryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(r rowScanner) (*model.Memory, error) {
	var out model.Memory
	var tagsJSON, structuredJSON []byte
	var image *string
	if err := r.Scan(&out.ID, &out.ElderID, &out.RawText, &out.Type, &tagsJSON, &structuredJSON, &image, &out.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tagsJSON, &out.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(structuredJSON, &out.StructuredJSON); err != nil {
		return nil, fmt.Errorf("decode structured_json: %w", err)
	}
	out.ImageURL = image
	return &out, nil
}

// --- Questions ---
type questions struct{ db *sql.DB }

func (q *questions) Create(ctx context.Context, mq *model.Question) (*model.Question, error) {
	id := mq.ID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := q.db.QueryRowContext(ctx, `
        INSERT INTO questions (question_id, elder_id, question_text, answer_text, answered_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at
    `, id, mq.ElderID, mq.QuestionText, mq.AnswerText, mq.AnsweredAt)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *mq
	out.ID = id
	out.CreatedAt = created
	return &out, nil
}

func (q *questions) List(ctx context.Context, elderID string, limit int) ([]*model.Question, error) {
	sqlq := `
        SELECT question_id, elder_id, question_text, answer_text, created_at, answered_at
        FROM questions WHERE elder_id=$1 ORDER BY created_at DESC`
	args := []interface{}{elderID}
	if limit > 0 {
		args = append(args, limit)
		sqlq += " LIMIT $2"
	}
	rows, err := q.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*model.Question
	for rows.Next() {
		var out model.Question
		if err := rows.Scan(&out.ID, &out.ElderID, &out.QuestionText, &out.AnswerText, &out.CreatedAt, &out.AnsweredAt); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

// --- Profiles ---
type profiles struct{ db *sql.DB }

func (p *profiles) Create(ctx context.Context, mp *model.Profile) (*model.Profile, error) {
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO profiles (user_id, email, role, full_name, elder_id)
        VALUES ($1,$2,$3,$4,$5)
    `, mp.UserID, mp.Email, string(mp.Role), mp.FullName, mp.ElderID)
	if err != nil {
		return nil, err
	}
	out := *mp
	return &out, nil
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, email, role, full_name, elder_id
        FROM profiles WHERE user_id=$1
    `, userID)
	return scanProfile(row)
}

func (p *profiles) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, email, role, full_name, elder_id
        FROM profiles WHERE email=$1
    `, email)
	return scanProfile(row)
}

func scanProfile(r rowScanner) (*model.Profile, error) {
	var out model.Profile
	var role string
	if err := r.Scan(&out.UserID, &out.Email, &role, &out.FullName, &out.ElderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	out.Role = model.Role(role)
	return &out, nil
}

// --- Links ---
type links struct{ db *sql.DB }

func (l *links) Create(ctx context.Context, ml *model.CaregiverElderLink) error {
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO caregiver_elder_links (caregiver_user_id, elder_user_id)
        VALUES ($1,$2)
        ON CONFLICT (caregiver_user_id, elder_user_id) DO NOTHING
    `, ml.CaregiverUserID, ml.ElderUserID)
	return err
}

func (l *links) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]*model.CaregiverElderLink, error) {
	rows, err := l.db.QueryContext(ctx, `
        SELECT caregiver_user_id, elder_user_id, created_at
        FROM caregiver_elder_links WHERE caregiver_user_id=$1 ORDER BY created_at ASC
    `, caregiverUserID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*model.CaregiverElderLink
	for rows.Next() {
		var out model.CaregiverElderLink
		if err := rows.Scan(&out.CaregiverUserID, &out.ElderUserID, &out.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

func (l *links) LinkByEmail(ctx context.Context, caregiverUserID, elderEmail string) error {
	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var elderUserID, role string
	err = tx.QueryRowContext(ctx, `
        SELECT user_id, role FROM profiles WHERE email=$1
    `, elderEmail).Scan(&elderUserID, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no elder found for email: %w", model.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if role != string(model.RoleElder) {
		return fmt.Errorf("profile for email is not an elder: %w", model.ErrValidation)
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO caregiver_elder_links (caregiver_user_id, elder_user_id)
        VALUES ($1,$2)
        ON CONFLICT (caregiver_user_id, elder_user_id) DO NOTHING
    `, caregiverUserID, elderUserID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Summaries ---
type summaries struct{ db *sql.DB }

func (s *summaries) Upsert(ctx context.Context, ms *model.DailySummary) (*model.DailySummary, error) {
	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO daily_summaries (elder_id, summary_date, summary_text)
        VALUES ($1,$2,$3)
        ON CONFLICT (elder_id, summary_date) DO UPDATE SET summary_text=EXCLUDED.summary_text
        RETURNING created_at
    `, ms.ElderID, ms.Date, ms.SummaryText)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *ms
	out.CreatedAt = created
	return &out, nil
}

func (s *summaries) Get(ctx context.Context, elderID, date string) (*model.DailySummary, error) {
	var out model.DailySummary
	row := s.db.QueryRowContext(ctx, `
        SELECT elder_id, summary_date, summary_text, created_at
        FROM daily_summaries WHERE elder_id=$1 AND summary_date=$2
    `, elderID, date)
	if err := row.Scan(&out.ElderID, &out.Date, &out.SummaryText, &out.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
