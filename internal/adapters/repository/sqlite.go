package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/okian/magicboard/internal/domain/model"
	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

type memberRow struct {
	Handle        string `db:"handle"`
	DisplayName   string `db:"display_name"`
	AvatarURL     string `db:"avatar_url"`
	RoleTags      string `db:"role_tags"`
	PostsCount    int64  `db:"posts_count"`
	LikesTotal    int64  `db:"likes_total"`
	RepliesTotal  int64  `db:"replies_total"`
	RetweetsTotal int64  `db:"retweets_total"`
	QuotesTotal   int64  `db:"quotes_total"`
	ViewsTotal    int64  `db:"views_total"`
}

func (r memberRow) record() model.ActivityRecord {
	return model.ActivityRecord{
		Handle:        r.Handle,
		DisplayName:   r.DisplayName,
		AvatarURL:     r.AvatarURL,
		RoleTags:      r.RoleTags,
		PostsCount:    r.PostsCount,
		LikesTotal:    r.LikesTotal,
		RepliesTotal:  r.RepliesTotal,
		RetweetsTotal: r.RetweetsTotal,
		QuotesTotal:   r.QuotesTotal,
		ViewsTotal:    r.ViewsTotal,
	}
}

type valentineRow struct {
	NoteID   string `db:"note_id"`
	From     string `db:"from_handle"`
	To       string `db:"to_handle"`
	Message  string `db:"message"`
	SentAtNs int64  `db:"sent_at_ns"`
}

const memberColumns = `handle, display_name, avatar_url, role_tags, posts_count, likes_total,
	replies_total, retweets_total, quotes_total, views_total`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens a SQLite database at path and runs migrations.
// Pass ":memory:" for a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path
	if path != memoryDSN {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite serializes writers; a single connection also keeps ":memory:"
	// pointing at one database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.ActivityRecord, error) {
	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+memberColumns+` FROM members ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]model.ActivityRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, handle string) (model.ActivityRecord, error) {
	var row memberRow
	err := s.db.GetContext(ctx, &row, `SELECT `+memberColumns+` FROM members WHERE handle_key = ?`, handleKey(handle))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ActivityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("get member %s: %w", handle, err)
	}
	return row.record(), nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec model.ActivityRecord) error {
	key := handleKey(rec.Handle)
	if key == "" {
		return fmt.Errorf("%w: empty handle", ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (handle_key, `+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(handle_key) DO UPDATE SET
			handle = excluded.handle,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			role_tags = excluded.role_tags,
			posts_count = excluded.posts_count,
			likes_total = excluded.likes_total,
			replies_total = excluded.replies_total,
			retweets_total = excluded.retweets_total,
			quotes_total = excluded.quotes_total,
			views_total = excluded.views_total
	`, key, rec.Handle, rec.DisplayName, rec.AvatarURL, rec.RoleTags,
		rec.PostsCount, rec.LikesTotal, rec.RepliesTotal, rec.RetweetsTotal, rec.QuotesTotal, rec.ViewsTotal)
	if err != nil {
		return fmt.Errorf("upsert member %s: %w", rec.Handle, err)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM members`); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) SaveValentine(ctx context.Context, v model.Valentine) error {
	key := handleKey(v.To)
	if key == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO valentines (note_id, from_handle, to_key, to_handle, message, sent_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(note_id) DO NOTHING
	`, v.NoteID, v.From, key, v.To, v.Message, v.SentAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save valentine %s: %w", v.NoteID, err)
	}
	return nil
}

func (s *SQLiteStore) Valentines(ctx context.Context, handle string) ([]model.Valentine, error) {
	var rows []valentineRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT note_id, from_handle, to_handle, message, sent_at_ns
		FROM valentines WHERE to_key = ? ORDER BY sent_at_ns DESC, id DESC
	`, handleKey(handle))
	if err != nil {
		return nil, fmt.Errorf("list valentines %s: %w", handle, err)
	}
	out := make([]model.Valentine, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Valentine{
			NoteID:  r.NoteID,
			From:    r.From,
			To:      r.To,
			Message: r.Message,
			SentAt:  time.Unix(0, r.SentAtNs).UTC(),
		})
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
