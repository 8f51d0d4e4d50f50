package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over the users table.
//
// The pgx pool is owned by the caller; this store does not close it.
// The schema identifier is validated and quoted.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema holding the users table (default "shelf").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return pgInvalid("with_schema", "empty schema")
		}
		if !pgIdentIsValid(schema) {
			return pgInvalid("with_schema", "invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "shelf",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const userColumns = `id, first_name, last_name, email, password_hash, salt1, created_at, updated_at`

// CreateUser inserts u. A duplicate normalized email is a ConflictError.
func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	const op = "identity.CreateUser"

	if strings.TrimSpace(u.Email) == "" {
		return pgInvalid(op, "email is required")
	}
	if u.PasswordHash == "" || u.Salt1 == "" {
		return pgInvalid(op, "credentials are required")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+pgIdent(s.schema, "users")+` (
		     id, first_name, last_name, email, email_norm, password_hash, salt1, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID,
		u.FirstName,
		u.LastName,
		strings.TrimSpace(u.Email),
		NormalizeEmail(u.Email),
		u.PasswordHash,
		u.Salt1,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return ConflictError{Op: op, Field: field}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindByEmail looks a user up by normalized email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.FindByEmail"

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+pgIdent(s.schema, "users")+` WHERE email_norm = $1`,
		NormalizeEmail(email),
	)
	return scanUser(op, row)
}

// FindByID looks a user up by primary key.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	const op = "identity.FindByID"

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+pgIdent(s.schema, "users")+` WHERE id = $1`,
		id,
	)
	return scanUser(op, row)
}

func scanUser(op string, row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.Salt1,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op}
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// pgInvalid standardizes invalid input errors.
func pgInvalid(op, msg string) error {
	return OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
}

// pgIdentIsValid checks if a string is a safe Postgres identifier.
func pgIdentIsValid(s string) bool {
	return pgIdentRe.MatchString(s)
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable constraint names, then fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_users_email_norm", strings.Contains(c, "email"):
		return "email", true
	case c == "users_pkey":
		return "id", true
	default:
		return "unique", true
	}
}
