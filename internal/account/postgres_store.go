package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"link-service/internal/db"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_digest,
		       provider_account_id, provider_display_name, provider_access_token,
		       status, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, NormalizeEmail(email))

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrPersistence, err)
	}
	return a, nil
}

func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	a.Email = NormalizeEmail(a.Email)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (
			id, email, display_name, password_digest,
			provider_account_id, provider_display_name, provider_access_token, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		a.ID,
		a.Email,
		a.DisplayName,
		a.PasswordDigest,
		toNull(a.ProviderAccountID),
		toNull(a.ProviderDisplayName),
		toNull(a.ProviderAccessToken),
		string(a.Status),
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("%w: create: %v", ErrPersistence, err)
	}
	return nil
}

// Update issues a single UPDATE so the patch lands atomically.
func (s *PostgresStore) Update(ctx context.Context, email string, p Patch) (*Account, error) {
	if p.empty() {
		return s.Get(ctx, email)
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.ProviderAccountID != nil {
		add("provider_account_id", toNull(*p.ProviderAccountID))
	}
	if p.ProviderDisplayName != nil {
		add("provider_display_name", toNull(*p.ProviderDisplayName))
	}
	if p.ProviderAccessToken != nil {
		add("provider_access_token", toNull(*p.ProviderAccessToken))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, NormalizeEmail(email))

	query := fmt.Sprintf(`
		UPDATE accounts
		SET %s
		WHERE LOWER(email) = LOWER($%d)
		RETURNING id, email, display_name, password_digest,
		          provider_account_id, provider_display_name, provider_access_token,
		          status, created_at, updated_at
	`, strings.Join(sets, ", "), len(args))

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update: %v", ErrPersistence, err)
	}
	return a, nil
}

func scanAccount(row *sql.Row) (*Account, error) {
	var (
		a                                   Account
		providerID, providerName, accessTok sql.NullString
		status                              string
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.DisplayName,
		&a.PasswordDigest,
		&providerID,
		&providerName,
		&accessTok,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ProviderAccountID = providerID.String
	a.ProviderDisplayName = providerName.String
	a.ProviderAccessToken = accessTok.String
	a.Status = Status(status)
	return &a, nil
}

func toNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
