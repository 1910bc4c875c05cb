package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/formkit/pkg/form"
)

// Submission is one stored form submission.
type Submission struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Form      string         `db:"form_name" json:"form"`
	Session   string         `db:"session_id" json:"session"`
	Valid     bool           `db:"valid" json:"valid"`
	Values    map[string]any `db:"field_values" json:"values"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// DB is the subset of pgxpool.Pool used by Repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores form submissions in PostgreSQL.
type Repository struct {
	db        DB
	sanitizer *Sanitizer
	now       func() time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithSanitizer replaces the default strict sanitizer.
func WithSanitizer(s *Sanitizer) RepositoryOption {
	return func(r *Repository) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository returns a repository over db.
func NewRepository(db DB, opts ...RepositoryOption) *Repository {
	r := &Repository{db: db, sanitizer: NewSanitizer(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const insertSubmission = `
INSERT INTO form_submissions (id, form_name, session_id, valid, field_values, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Save stores the sanitized values of one submission.
func (r *Repository) Save(ctx context.Context, formName, session string, valid bool, fields form.FieldMap) (Submission, error) {
	s := Submission{
		ID:        uuid.New(),
		Form:      formName,
		Session:   session,
		Valid:     valid,
		Values:    r.sanitizer.Values(fields),
		CreatedAt: r.now().UTC(),
	}

	if _, err := r.db.Exec(ctx, insertSubmission, s.ID, s.Form, s.Session, s.Valid, s.Values, s.CreatedAt); err != nil {
		return Submission{}, errors.Join(ErrFailedToSave, err)
	}
	return s, nil
}

const selectSubmission = `
SELECT id, form_name, session_id, valid, field_values, created_at
FROM form_submissions`

// Get returns one submission by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Submission, error) {
	var s Submission
	err := r.db.QueryRow(ctx, selectSubmission+` WHERE id = $1`, id).
		Scan(&s.ID, &s.Form, &s.Session, &s.Valid, &s.Values, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	return s, nil
}

// List returns the latest submissions of a form, newest first.
func (r *Repository) List(ctx context.Context, formName string, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, selectSubmission+` WHERE form_name = $1 ORDER BY created_at DESC LIMIT $2`, formName, limit)
	if err != nil {
		return nil, errors.Join(ErrFailedToList, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[Submission])
	if err != nil {
		return nil, errors.Join(ErrFailedToList, err)
	}
	return out, nil
}

// Handler returns a form handler saving every submit of formName. The
// session is taken from the context, see WithSession.
func (r *Repository) Handler(formName string, valid bool) form.Handler {
	return func(ctx context.Context, fields form.FieldMap) error {
		_, err := r.Save(ctx, formName, SessionFromContext(ctx), valid, fields)
		return err
	}
}

type sessionKey struct{}

// WithSession stores the submitting session ID in ctx.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session stored by WithSession, or "".
func SessionFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey{}).(string)
	return s
}
