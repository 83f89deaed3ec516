package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchstats/internal/service"
)

var _ service.AccountDirectory = (*AccountReader)(nil)

// AccountReader provides read-only access to registered accounts.
type AccountReader struct {
	pool *pgxpool.Pool
}

// NewAccountReader creates a new account reader.
func NewAccountReader(pool *pgxpool.Pool) *AccountReader {
	return &AccountReader{pool: pool}
}

// RiotIDByEmail returns the Riot ID linked to an account email. found is false when
// no account uses that email.
func (r *AccountReader) RiotIDByEmail(ctx context.Context, email string) (gameName, tagLine string, found bool, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT game_name, tag_line
		FROM accounts
		WHERE email = $1
	`, email).Scan(&gameName, &tagLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("get account: %w", err)
	}
	return gameName, tagLine, true, nil
}
