// Package directory provides a fixed, in-process account directory.
package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/ports"
)

// Static is a directory of known accounts sharing one password.
type Static struct {
	mu       sync.RWMutex
	accounts map[string]domainauth.Account
}

var _ ports.Directory = (*Static)(nil)

// StaticOptions configures a Static directory.
type StaticOptions struct {
	Identities []domainauth.Identity
	// Password is hashed once and shared by every identity.
	Password string
	// Cost is the bcrypt cost; zero uses bcrypt.DefaultCost.
	Cost int
}

// NewStatic hashes the shared password and indexes identities by email.
func NewStatic(opts StaticOptions) (*Static, error) {
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash directory password: %w", err)
	}

	d := &Static{accounts: make(map[string]domainauth.Account, len(opts.Identities))}
	for _, id := range opts.Identities {
		d.accounts[normalizeEmail(id.Email)] = domainauth.Account{Identity: id, PasswordHash: hash}
	}
	return d, nil
}

func (d *Static) FindByEmail(ctx context.Context, email string) (domainauth.Account, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Account{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	acct, ok := d.accounts[normalizeEmail(email)]
	if !ok {
		return domainauth.Account{}, apperrors.NotFoundf("account %q not found", email)
	}
	return acct, nil
}

// SetActive toggles an account's active flag.
func (d *Static) SetActive(email string, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeEmail(email)
	acct, ok := d.accounts[key]
	if !ok {
		return apperrors.NotFoundf("account %q not found", email)
	}
	acct.Identity.Active = active
	d.accounts[key] = acct
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
