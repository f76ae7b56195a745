package db

import (
	"context"
	"database/sql"
)

const accountsMigration = `
CREATE TABLE IF NOT EXISTS accounts (
    id uuid PRIMARY KEY,
    email text NOT NULL,
    display_name text NOT NULL DEFAULT '',
    password_digest text NOT NULL,
    provider_account_id text,
    provider_display_name text,
    provider_access_token text,
    status text NOT NULL DEFAULT 'NOT_CONNECTED',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT accounts_status_check
        CHECK (status IN ('NOT_CONNECTED', 'CONNECTED')),
    CONSTRAINT accounts_connected_fields_check
        CHECK (status <> 'CONNECTED' OR (
            provider_account_id IS NOT NULL
            AND provider_display_name IS NOT NULL
            AND provider_access_token IS NOT NULL
        ))
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_lower_unique
ON accounts (LOWER(email));
`

func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, accountsMigration)
	return err
}
