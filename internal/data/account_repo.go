package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookms/bookms-admin/internal/data/pgxutil"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/ports"
)

const accountColumns = `id, name, email, role, provider, password_hash, active, last_login`

// AccountRepo stores dashboard accounts.
type AccountRepo struct {
	DB *sql.DB
}

var _ ports.Directory = (*AccountRepo)(nil)

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{DB: db}
}

type accountRow struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	Role         int16      `db:"role"`
	Provider     string     `db:"provider"`
	PasswordHash []byte     `db:"password_hash"`
	Active       bool       `db:"active"`
	LastLogin    *time.Time `db:"last_login"`
}

func (r accountRow) toDomain() domainauth.Account {
	return domainauth.Account{
		Identity: domainauth.Identity{
			ID:        r.ID,
			Name:      r.Name,
			Email:     r.Email,
			Role:      domainauth.Role(r.Role),
			Provider:  domainauth.Provider(r.Provider),
			LastLogin: r.LastLogin,
			Active:    r.Active,
		},
		PasswordHash: r.PasswordHash,
	}
}

// FindByEmail matches case-insensitively on the trimmed address.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (domainauth.Account, error) {
	email = strings.TrimSpace(email)
	var out accountRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email)
		if err != nil {
			return err
		}
		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[accountRow])
		return err
	})
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsNotFound(mapped) {
			return domainauth.Account{}, apperrors.NotFoundf("account %q not found", email)
		}
		return domainauth.Account{}, fmt.Errorf("find account: %w", mapped)
	}
	return out.toDomain(), nil
}

// List returns every account ordered by id, without password hashes.
func (r *AccountRepo) List(ctx context.Context) ([]domainauth.Identity, error) {
	var rows []accountRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
		if err != nil {
			return err
		}
		rows, err = pgx.CollectRows(res, pgx.RowToStructByName[accountRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", apperrors.MapDBError(err))
	}
	out := make([]domainauth.Identity, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain().Identity
	}
	return out, nil
}

// SetActive toggles an account's active flag.
func (r *AccountRepo) SetActive(ctx context.Context, email string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET active = $2, updated_at = now() WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email), active)
	if err != nil {
		return fmt.Errorf("set account active: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set account active: %w", err)
	}
	if n == 0 {
		return apperrors.NotFoundf("account %q not found", email)
	}
	return nil
}

// UpsertAccounts inserts or updates accounts keyed by id.
func (r *AccountRepo) UpsertAccounts(ctx context.Context, accounts []domainauth.Account) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range accounts {
			id := a.Identity
			batch.Queue(`
				INSERT INTO accounts (`+accountColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role,
					provider = EXCLUDED.provider, password_hash = EXCLUDED.password_hash,
					active = EXCLUDED.active, updated_at = now()`,
				id.ID, id.Name, id.Email, int16(id.Role), string(id.Provider), a.PasswordHash, id.Active, id.LastLogin)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("upsert accounts: %w", apperrors.MapDBError(err))
	}
	return nil
}
