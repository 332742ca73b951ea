package devseed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
)

type recorder struct {
	accounts   []domainauth.Account
	categories []catalog.Category
	books      []catalog.Book
	failCats   bool
}

func (r *recorder) UpsertAccounts(_ context.Context, a []domainauth.Account) error {
	r.accounts = a
	return nil
}

func (r *recorder) UpsertCategories(_ context.Context, c []catalog.Category) error {
	if r.failCats {
		return errors.New("boom")
	}
	r.categories = c
	return nil
}

func (r *recorder) UpsertBooks(_ context.Context, b []catalog.Book) error {
	r.books = b
	return nil
}

func TestRun(t *testing.T) {
	rec := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, Run(context.Background(), Targets{Accounts: rec, Catalog: rec, Cost: bcrypt.MinCost}, logger))
	require.Len(t, rec.accounts, len(Identities()))
	assert.NoError(t, bcrypt.CompareHashAndPassword(rec.accounts[0].PasswordHash, []byte(DemoPassword)))
	assert.Len(t, rec.categories, 6)
	assert.Len(t, rec.books, 4)
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	rec := &recorder{failCats: true}
	err := Run(context.Background(), Targets{Accounts: rec, Catalog: rec, Cost: bcrypt.MinCost}, nil)
	require.Error(t, err)
	assert.Len(t, rec.accounts, 4)
	assert.Empty(t, rec.books)
}

func TestFixtures(t *testing.T) {
	for _, b := range Books() {
		for _, c := range b.Categories {
			assert.Contains(t, CategoryNames(), c, "book %s", b.ID)
		}
	}
	active := 0
	for _, id := range Identities() {
		require.NoError(t, id.Validate())
		if id.Active {
			active++
		}
	}
	assert.Equal(t, 3, active)
}
