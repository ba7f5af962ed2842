package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// Open opens (or creates) a SQLite database at the given path and enables WAL
// journal mode. Pass ":memory:" for an in-memory database (tests).
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database at path, applies the schema and returns a store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := ApplySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB allows wiring with an existing connection (used by factory and tests).
func NewWithDB(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Memories() store.Memories   { return &memories{db: s.db} }
func (s *sqlStore) Questions() store.Questions { return &questions{db: s.db} }
func (s *sqlStore) Profiles() store.Profiles   { return &profiles{db: s.db} }
func (s *sqlStore) Links() store.Links         { return &links{db: s.db} }
func (s *sqlStore) Summaries() store.Summaries { return &summaries{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func marshalStructured(m map[string]interface{}) (string, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	b, err := json.Marshal(m)
	return string(b), err
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
	now := time.Now().UTC()

	_, err = m.db.ExecContext(ctx, `
        INSERT INTO memories (memory_id, elder_id, raw_text, memory_type, tags, structured_json, image_url, created_at)
        VALUES (?,?,?,?,?,?,?,?)
    `, id, mm.ElderID, mm.RawText, typ, tagsJSON, structuredJSON, mm.ImageURL, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	out := *mm
	out.ID = id
	out.Type = typ
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.CreatedAt = now
	return &out, nil
}

func (m *memories) GetByID(ctx context.Context, elderID, memoryID string) (*model.Memory, error) {
	row := m.db.QueryRowContext(ctx, `
        SELECT memory_id, elder_id, raw_text, memory_type, tags, structured_json, image_url, created_at
        FROM memories WHERE elder_id=? AND memory_id=?
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
        FROM memories WHERE elder_id=?`
	args := []interface{}{req.ElderID}
	if req.Type != "" {
		q += " AND memory_type=?"
		args = append(args, req.Type)
	}
	if req.After != nil {
		q += " AND created_at >= ?"
		args = append(args, req.After.UTC().Format(time.RFC3339Nano))
	}
	if req.Before != nil {
		q += " AND created_at <= ?"
		args = append(args, req.Before.UTC().Format(time.RFC3339Nano))
	}
	q += " ORDER BY created_at DESC"
	if req.Limit > 0 && req.Tag == "" {
		q += " LIMIT ?"
		args = append(args, req.Limit)
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
		// Tag filtering happens here; SQLite has no native JSON containment.
		if req.Tag != "" && !hasTag(mem.Tags, req.Tag) {
			continue
		}
		res = append(res, mem)
		if req.Tag != "" && req.Limit > 0 && len(res) == req.Limit {
			break
		}
	}
	return res, rows.Err()
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (m *memories) SetImageURL(ctx context.Context, elderID, memoryID, imageURL string) error {
	res, err := m.db.ExecContext(ctx, `
        UPDATE memories SET image_url=? WHERE elder_id=? AND memory_id=?
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
	var tagsJSON, structuredJSON, created string
	var image *string
	if err := r.Scan(&out.ID, &out.ElderID, &out.RawText, &out.Type, &tagsJSON, &structuredJSON, &image, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &out.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(structuredJSON), &out.StructuredJSON); err != nil {
		return nil, fmt.Errorf("decode structured_json: %w", err)
	}
	ts, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	out.CreatedAt = ts
	out.ImageURL = image
	return &out, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// --- Questions ---
type questions struct{ db *sql.DB }

func (q *questions) Create(ctx context.Context, mq *model.Question) (*model.Question, error) {
	id := mq.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	var answeredAt *string
	if mq.AnsweredAt != nil {
		s := mq.AnsweredAt.UTC().Format(time.RFC3339Nano)
		answeredAt = &s
	}
	_, err := q.db.ExecContext(ctx, `
        INSERT INTO questions (question_id, elder_id, question_text, answer_text, created_at, answered_at)
        VALUES (?,?,?,?,?,?)
    `, id, mq.ElderID, mq.QuestionText, mq.AnswerText, now.Format(time.RFC3339Nano), answeredAt)
	if err != nil {
		return nil, err
	}
	out := *mq
	out.ID = id
	out.CreatedAt = now
	return &out, nil
}

func (q *questions) List(ctx context.Context, elderID string, limit int) ([]*model.Question, error) {
	sqlq := `
        SELECT question_id, elder_id, question_text, answer_text, created_at, answered_at
        FROM questions WHERE elder_id=? ORDER BY created_at DESC`
	args := []interface{}{elderID}
	if limit > 0 {
		sqlq += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := q.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*model.Question
	for rows.Next() {
		var out model.Question
		var created string
		var answered *string
		if err := rows.Scan(&out.ID, &out.ElderID, &out.QuestionText, &out.AnswerText, &created, &answered); err != nil {
			return nil, err
		}
		ts, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		out.CreatedAt = ts
		if answered != nil {
			at, err := parseTime(*answered)
			if err != nil {
				return nil, err
			}
			out.AnsweredAt = &at
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
        VALUES (?,?,?,?,?)
    `, mp.UserID, mp.Email, string(mp.Role), mp.FullName, mp.ElderID)
	if err != nil {
		return nil, err
	}
	out := *mp
	return &out, nil
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, email, role, full_name, elder_id FROM profiles WHERE user_id=?
    `, userID)
	return scanProfile(row)
}

func (p *profiles) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT user_id, email, role, full_name, elder_id FROM profiles WHERE email=?
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
        INSERT OR IGNORE INTO caregiver_elder_links (caregiver_user_id, elder_user_id, created_at)
        VALUES (?,?,?)
    `, ml.CaregiverUserID, ml.ElderUserID, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (l *links) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]*model.CaregiverElderLink, error) {
	rows, err := l.db.QueryContext(ctx, `
        SELECT caregiver_user_id, elder_user_id, created_at
        FROM caregiver_elder_links WHERE caregiver_user_id=? ORDER BY created_at ASC
    `, caregiverUserID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*model.CaregiverElderLink
	for rows.Next() {
		var out model.CaregiverElderLink
		var created string
		if err := rows.Scan(&out.CaregiverUserID, &out.ElderUserID, &created); err != nil {
			return nil, err
		}
		ts, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		out.CreatedAt = ts
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
        SELECT user_id, role FROM profiles WHERE email=?
    `, elderEmail).Scan(&elderUserID, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no elder found for email: %w", model.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !strings.EqualFold(role, string(model.RoleElder)) {
		return fmt.Errorf("profile for email is not an elder: %w", model.ErrValidation)
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO caregiver_elder_links (caregiver_user_id, elder_user_id, created_at)
        VALUES (?,?,?)
    `, caregiverUserID, elderUserID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Summaries ---
type summaries struct{ db *sql.DB }

func (s *summaries) Upsert(ctx context.Context, ms *model.DailySummary) (*model.DailySummary, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO daily_summaries (elder_id, summary_date, summary_text, created_at)
        VALUES (?,?,?,?)
        ON CONFLICT (elder_id, summary_date) DO UPDATE SET summary_text=excluded.summary_text
    `, ms.ElderID, ms.Date, ms.SummaryText, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	out := *ms
	out.CreatedAt = now
	return &out, nil
}

func (s *summaries) Get(ctx context.Context, elderID, date string) (*model.DailySummary, error) {
	var out model.DailySummary
	var created string
	row := s.db.QueryRowContext(ctx, `
        SELECT elder_id, summary_date, summary_text, created_at
        FROM daily_summaries WHERE elder_id=? AND summary_date=?
    `, elderID, date)
	if err := row.Scan(&out.ElderID, &out.Date, &out.SummaryText, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	ts, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	out.CreatedAt = ts
	return &out, nil
}
