package ports_test

import (
	"testing"

	"github.com/bookms/bookms-admin/internal/mocks"
	fakes "github.com/bookms/bookms-admin/internal/mocks/auth"
	"github.com/bookms/bookms-admin/internal/ports"
)

// This test only verifies that the test doubles conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.Directory = (*mocks.MockDirectory)(nil)
	var _ ports.SSOProvider = (*mocks.MockSSOProvider)(nil)
	var _ ports.SSOExchanger = (*mocks.MockSSOExchanger)(nil)
	var _ ports.TokenIssuer = (*mocks.MockTokenIssuer)(nil)
	var _ ports.Storage = (*mocks.MockStorage)(nil)
	var _ ports.StorageProvider = (*mocks.MockStorageProvider)(nil)
	var _ ports.Catalog = (*mocks.MockCatalog)(nil)

	var _ ports.SSOProvider = (*fakes.FakeSSO)(nil)
	var _ ports.TokenIssuer = (*fakes.SequentialTokens)(nil)
}

func TestSessionKeys(t *testing.T) {
	keys := ports.SessionKeys()
	want := []string{ports.StorageKeyAccessToken, ports.StorageKeyRefreshToken, ports.StorageKeyCurrentUser}
	if len(keys) != len(want) {
		t.Fatalf("SessionKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("SessionKeys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
