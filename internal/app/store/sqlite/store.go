// Package sqlite provides the embedded SQLite backend of the meeting store.
//
// The schema is managed by golang-migrate from the files in migrations/.
// Transactions begin IMMEDIATE (see the _txlock DSN parameter), so a
// transaction owns the database write lock from its first statement and
// LockMeeting only has to load the row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/store/sqlite/migrations"
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists meeting state in SQLite.
type Store struct {
	sqlDB *sql.DB
	ops
}

var _ storage.Store = (*Store)(nil)
var _ storage.Tx = ops{}

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ops implements the queries against either the pool or an open transaction.
type ops struct {
	q querier
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema version.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrateUp(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, ops: ops{q: sqlDB}}, nil
}

// migrateUp applies pending migrations. The migrate instance is not closed:
// closing it would close sqlDB as well.
func migrateUp(sqlDB *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	drv, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// WithTx runs fn inside an IMMEDIATE transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin tx", err)
	}
	if err := fn(ctx, ops{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("commit tx", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close(context.Context) error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// classify maps driver errors onto the storage sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrTransient, err)
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch code {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w: %w", op, storage.ErrDuplicate, err)
		}
		switch code & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w: %w", op, storage.ErrTransient, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ---- meetings ----

const meetingColumns = `id, title, title_ci, location, location_ci, category, gender_limit, status,
	max_participants, current_participants, organizer_id, can_evaluate, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (models.Meeting, error) {
	var (
		m                  models.Meeting
		category, gender   string
		status             string
		createdAt, updated int64
	)
	err := row.Scan(&m.ID, &m.Title, &m.TitleCI, &m.Location, &m.LocationCI, &category, &gender, &status,
		&m.MaxParticipants, &m.CurrentParticipants, &m.OrganizerID, &m.CanEvaluate, &createdAt, &updated)
	if err != nil {
		return models.Meeting{}, err
	}
	m.Category = models.Category(category)
	m.GenderLimit = models.GenderLimit(gender)
	m.Status = models.Status(status)
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updated)
	return m, nil
}

func (o ops) queryMeetings(ctx context.Context, op, query string, args ...any) ([]models.Meeting, error) {
	rows, err := o.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]models.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func (o ops) GetMeeting(ctx context.Context, id string) (models.Meeting, error) {
	row := o.q.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if err != nil {
		return models.Meeting{}, classify("get meeting", err)
	}
	return m, nil
}

func (o ops) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	return o.queryMeetings(ctx, "list meetings",
		`SELECT `+meetingColumns+` FROM meetings ORDER BY created_at, id`)
}

// likeEscaper escapes LIKE metacharacters; '\' is the ESCAPE character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (o ops) SearchMeetings(ctx context.Context, f storage.SearchFilter) ([]models.Meeting, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if len(f.Terms) > 0 {
		ors := make([]string, 0, len(f.Terms))
		for _, term := range f.Terms {
			pattern := "%" + likeEscaper.Replace(term) + "%"
			ors = append(ors, `(title_ci LIKE ? ESCAPE '\' OR location_ci LIKE ? ESCAPE '\')`)
			args = append(args, pattern, pattern)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	query := `SELECT ` + meetingColumns + ` FROM meetings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
	return o.queryMeetings(ctx, "search meetings", query, args...)
}

func (o ops) LockMeeting(ctx context.Context, id string) (models.Meeting, error) {
	return o.GetMeeting(ctx, id)
}

func (o ops) InsertMeeting(ctx context.Context, m models.Meeting) error {
	_, err := o.q.ExecContext(ctx,
		`INSERT INTO meetings (`+meetingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.TitleCI, m.Location, m.LocationCI, string(m.Category), string(m.GenderLimit),
		string(m.Status), m.MaxParticipants, m.CurrentParticipants, m.OrganizerID, m.CanEvaluate,
		toMillis(m.CreatedAt), toMillis(m.UpdatedAt),
	)
	return classify("insert meeting", err)
}

// updateMeeting runs an UPDATE by id and reports ErrNotFound when no row matched.
func (o ops) updateMeeting(ctx context.Context, op, set string, args ...any) error {
	res, err := o.q.ExecContext(ctx, `UPDATE meetings SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

func (o ops) SetParticipants(ctx context.Context, id string, n int) error {
	return o.updateMeeting(ctx, "set participants", "current_participants = ?", n, toMillis(time.Now()), id)
}

func (o ops) SetStatus(ctx context.Context, id string, s models.Status) error {
	return o.updateMeeting(ctx, "set status", "status = ?", string(s), toMillis(time.Now()), id)
}

func (o ops) DisableEvaluation(ctx context.Context, id string) error {
	return o.updateMeeting(ctx, "disable evaluation", "can_evaluate = 0", toMillis(time.Now()), id)
}

func (o ops) DeleteMeeting(ctx context.Context, id string) error {
	res, err := o.q.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return classify("delete meeting", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete meeting", err)
	}
	if n == 0 {
		return fmt.Errorf("delete meeting: %w", storage.ErrNotFound)
	}
	return nil
}

// ---- membership ----

func (o ops) IsMember(ctx context.Context, meetingID, userID string) (bool, error) {
	var one int
	err := o.q.QueryRowContext(ctx,
		`SELECT 1 FROM meeting_members WHERE meeting_id = ? AND user_id = ?`, meetingID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("is member", err)
	}
	return true, nil
}

func (o ops) ListMembers(ctx context.Context, meetingID string) ([]models.MeetingMember, error) {
	rows, err := o.q.QueryContext(ctx,
		`SELECT id, meeting_id, user_id, created_at FROM meeting_members
		 WHERE meeting_id = ? ORDER BY created_at, rowid`, meetingID)
	if err != nil {
		return nil, classify("list members", err)
	}
	defer rows.Close()

	out := make([]models.MeetingMember, 0)
	for rows.Next() {
		var (
			mm        models.MeetingMember
			createdAt int64
		)
		if err := rows.Scan(&mm.ID, &mm.MeetingID, &mm.UserID, &createdAt); err != nil {
			return nil, classify("list members", err)
		}
		mm.CreatedAt = fromMillis(createdAt)
		out = append(out, mm)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list members", err)
	}
	return out, nil
}

func (o ops) CountMembers(ctx context.Context, meetingID string) (int64, error) {
	var n int64
	err := o.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM meeting_members WHERE meeting_id = ?`, meetingID).Scan(&n)
	if err != nil {
		return 0, classify("count members", err)
	}
	return n, nil
}

func (o ops) InsertMember(ctx context.Context, mm models.MeetingMember) error {
	if mm.ID == "" {
		mm.ID = uuid.NewString()
	}
	if mm.CreatedAt.IsZero() {
		mm.CreatedAt = time.Now()
	}
	_, err := o.q.ExecContext(ctx,
		`INSERT INTO meeting_members (id, meeting_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
		mm.ID, mm.MeetingID, mm.UserID, toMillis(mm.CreatedAt))
	return classify("insert member", err)
}

func (o ops) DeleteMember(ctx context.Context, meetingID, userID string) (bool, error) {
	res, err := o.q.ExecContext(ctx,
		`DELETE FROM meeting_members WHERE meeting_id = ? AND user_id = ?`, meetingID, userID)
	if err != nil {
		return false, classify("delete member", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("delete member", err)
	}
	return n > 0, nil
}

func (o ops) DeleteMembersByMeeting(ctx context.Context, meetingID string) (int64, error) {
	return o.execCount(ctx, "delete members", `DELETE FROM meeting_members WHERE meeting_id = ?`, meetingID)
}

func (o ops) execCount(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := o.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(op, err)
	}
	return n, nil
}

// ---- chat rooms ----

func (o ops) GetRoom(ctx context.Context, meetingID string) (models.ChatRoom, error) {
	var (
		r         models.ChatRoom
		createdAt int64
	)
	err := o.q.QueryRowContext(ctx,
		`SELECT id, meeting_id, name, host_id, created_at FROM chat_rooms WHERE meeting_id = ?`, meetingID).
		Scan(&r.ID, &r.MeetingID, &r.Name, &r.HostID, &createdAt)
	if err != nil {
		return models.ChatRoom{}, classify("get room", err)
	}
	r.CreatedAt = fromMillis(createdAt)

	rows, err := o.q.QueryContext(ctx,
		`SELECT user_id FROM chat_room_users WHERE meeting_id = ? ORDER BY joined_at, rowid`, meetingID)
	if err != nil {
		return models.ChatRoom{}, classify("get room users", err)
	}
	defer rows.Close()

	r.CurrentUsers = make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return models.ChatRoom{}, classify("get room users", err)
		}
		r.CurrentUsers = append(r.CurrentUsers, userID)
	}
	if err := rows.Err(); err != nil {
		return models.ChatRoom{}, classify("get room users", err)
	}
	return r, nil
}

func (o ops) InsertRoom(ctx context.Context, r models.ChatRoom) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := o.q.ExecContext(ctx,
		`INSERT INTO chat_rooms (id, meeting_id, name, host_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.MeetingID, r.Name, r.HostID, toMillis(r.CreatedAt))
	if err != nil {
		return classify("insert room", err)
	}
	for _, userID := range r.CurrentUsers {
		if _, err := o.AddRoomUser(ctx, r.MeetingID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (o ops) roomExists(ctx context.Context, meetingID string) error {
	var one int
	err := o.q.QueryRowContext(ctx, `SELECT 1 FROM chat_rooms WHERE meeting_id = ?`, meetingID).Scan(&one)
	return classify("get room", err)
}

func (o ops) AddRoomUser(ctx context.Context, meetingID, userID string) (bool, error) {
	if err := o.roomExists(ctx, meetingID); err != nil {
		return false, err
	}
	n, err := o.execCount(ctx, "add room user",
		`INSERT OR IGNORE INTO chat_room_users (meeting_id, user_id, joined_at) VALUES (?, ?, ?)`,
		meetingID, userID, toMillis(time.Now()))
	return n > 0, err
}

func (o ops) RemoveRoomUser(ctx context.Context, meetingID, userID string) (bool, error) {
	if err := o.roomExists(ctx, meetingID); err != nil {
		return false, err
	}
	n, err := o.execCount(ctx, "remove room user",
		`DELETE FROM chat_room_users WHERE meeting_id = ? AND user_id = ?`, meetingID, userID)
	return n > 0, err
}

func (o ops) DeleteRoomByMeeting(ctx context.Context, meetingID string) (bool, error) {
	if _, err := o.execCount(ctx, "delete room users",
		`DELETE FROM chat_room_users WHERE meeting_id = ?`, meetingID); err != nil {
		return false, err
	}
	n, err := o.execCount(ctx, "delete room", `DELETE FROM chat_rooms WHERE meeting_id = ?`, meetingID)
	return n > 0, err
}

// ---- evaluations ----

func (o ops) EvaluationExists(ctx context.Context, evaluatorID, evaluatedID, meetingID string) (bool, error) {
	var one int
	err := o.q.QueryRowContext(ctx,
		`SELECT 1 FROM user_evaluations WHERE evaluator_id = ? AND evaluated_id = ? AND meeting_id = ?`,
		evaluatorID, evaluatedID, meetingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("evaluation exists", err)
	}
	return true, nil
}

func (o ops) InsertEvaluation(ctx context.Context, e models.Evaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := o.q.ExecContext(ctx,
		`INSERT INTO user_evaluations (id, evaluator_id, evaluated_id, meeting_id, is_positive, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.EvaluatorID, e.EvaluatedID, e.MeetingID, e.IsPositive, toMillis(e.CreatedAt))
	return classify("insert evaluation", err)
}

func (o ops) DeleteEvaluationsByMeeting(ctx context.Context, meetingID string) (int64, error) {
	return o.execCount(ctx, "delete evaluations", `DELETE FROM user_evaluations WHERE meeting_id = ?`, meetingID)
}

// ---- users ----

func (o ops) GetUser(ctx context.Context, id string) (models.User, error) {
	var (
		u                  models.User
		createdAt, updated int64
	)
	err := o.q.QueryRowContext(ctx,
		`SELECT id, name, activity_point, created_at, updated_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.ActivityPoint, &createdAt, &updated)
	if err != nil {
		return models.User{}, classify("get user", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (o ops) EnsureUser(ctx context.Context, u models.User) error {
	now := toMillis(time.Now())
	_, err := o.q.ExecContext(ctx,
		`INSERT INTO users (id, name, activity_point, created_at, updated_at) VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Name, now, now)
	return classify("ensure user", err)
}

func (o ops) AddActivityPoints(ctx context.Context, userID string, delta int) error {
	res, err := o.q.ExecContext(ctx,
		`UPDATE users SET activity_point = activity_point + ?, updated_at = ? WHERE id = ?`,
		delta, toMillis(time.Now()), userID)
	if err != nil {
		return classify("add activity points", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("add activity points", err)
	}
	if n == 0 {
		return fmt.Errorf("add activity points: %w", storage.ErrNotFound)
	}
	return nil
}
