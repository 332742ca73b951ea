// Package mocks provides gomock implementations of the dashboard ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	dir := mocks.NewMockDirectory(ctrl)
//	dir.EXPECT().FindByEmail(gomock.Any(), "admin@bookms.com").Return(acct, nil)
package mocks

// Directory, SSOExchanger, SSOProvider, TokenIssuer: the login collaborators.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_mock.go github.com/bookms/bookms-admin/internal/ports Directory,SSOExchanger,SSOProvider,TokenIssuer

// Storage, StorageProvider: per-client durable storage.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storage_mock.go github.com/bookms/bookms-admin/internal/ports Storage,StorageProvider

// Catalog: book listing backend.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=catalog_mock.go github.com/bookms/bookms-admin/internal/ports Catalog
