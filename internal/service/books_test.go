package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bookms/bookms-admin/internal/adapters/memory"
	"github.com/bookms/bookms-admin/internal/devseed"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/mocks"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
)

func newBookService(rec *statsd.Recorder) *BookService {
	return NewBookService(BookServiceOptions{
		Catalog: memory.NewCatalog(devseed.Books(), devseed.CategoryNames()),
		Runtime: testRuntime(rec),
		Backend: "memory",
	})
}

func TestBookService_ListBooks(t *testing.T) {
	rec := &statsd.Recorder{}
	svc := newBookService(rec)

	l, err := svc.ListBooks(context.Background(), ListBooksInput{Filter: catalog.Filter{Term: "  the "}})
	require.NoError(t, err)
	assert.Equal(t, "the", l.Filter.Term)
	assert.Equal(t, catalog.All, l.Filter.Category)
	assert.Equal(t, 2, l.Page.TotalCount)
	assert.Equal(t, 1, l.Page.Number)
	assert.Equal(t, catalog.DefaultPageSize, l.Page.Size)
	assert.Equal(t, 1, l.Page.From)
	assert.Equal(t, 2, l.Page.To)
	assert.Equal(t, l.Filter.Signature(), l.Signature)

	timings := rec.Named(MetricCatalogList)
	require.Len(t, timings, 1)
	assert.Equal(t, "memory", timings[0].Tags["backend"])
	assert.Equal(t, "success", timings[0].Tags["result"])
}

func TestBookService_ListBooksTagsOutcome(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("canceled request", func(t *testing.T) {
		rec := &statsd.Recorder{}
		_, err := newBookService(rec).ListBooks(canceled, ListBooksInput{})
		require.Error(t, err)
		assert.True(t, apperrors.IsCanceled(err))
		timings := rec.Named(MetricCatalogList)
		require.Len(t, timings, 1)
		assert.Equal(t, "canceled", timings[0].Tags["result"])
	})

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", apperrors.MapContextError(context.DeadlineExceeded), "timeout"},
		{"unavailable", apperrors.New(apperrors.ErrCodeUnavailable, "catalog down"), "unavailable"},
		{"other", errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cat := mocks.NewMockCatalog(ctrl)
			cat.EXPECT().ListBooks(gomock.Any(), gomock.Any(), gomock.Any()).Return(catalog.Result{}, tt.err)
			rec := &statsd.Recorder{}

			svc := NewBookService(BookServiceOptions{Catalog: cat, Runtime: testRuntime(rec)})
			_, err := svc.ListBooks(context.Background(), ListBooksInput{})
			require.Error(t, err)
			timings := rec.Named(MetricCatalogList)
			require.Len(t, timings, 1)
			assert.Equal(t, tt.want, timings[0].Tags["result"])
		})
	}
}

func TestBookService_PageResetsWhenFilterChanges(t *testing.T) {
	svc := newBookService(&statsd.Recorder{})
	ctx := context.Background()

	first, err := svc.ListBooks(ctx, ListBooksInput{Page: catalog.PageRequest{Number: 2, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Page.Number)
	require.Len(t, first.Page.Records, 2)

	same, err := svc.ListBooks(ctx, ListBooksInput{
		Page:          catalog.PageRequest{Number: 2, Size: 2},
		PrevSignature: first.Signature,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, same.Page.Number)

	changed, err := svc.ListBooks(ctx, ListBooksInput{
		Filter:        catalog.Filter{Category: "Fiction"},
		Page:          catalog.PageRequest{Number: 2, Size: 2},
		PrevSignature: first.Signature,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, changed.Page.Number)
	assert.Equal(t, 2, changed.Page.TotalCount)
}

func TestBookService_EmptyResult(t *testing.T) {
	svc := newBookService(&statsd.Recorder{})
	l, err := svc.ListBooks(context.Background(), ListBooksInput{Filter: catalog.Filter{Year: "1999"}})
	require.NoError(t, err)
	assert.Empty(t, l.Page.Records)
	assert.NotNil(t, l.Page.Records)
	assert.Equal(t, 1, l.Page.TotalPages)
	assert.Zero(t, l.Page.From)
}

func TestBookService_CatalogError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().ListBooks(gomock.Any(), gomock.Any(), gomock.Any()).Return(catalog.Result{}, errors.New("db down"))
	cat.EXPECT().Facets(gomock.Any()).Return(catalog.Facets{}, errors.New("db down"))

	svc := NewBookService(BookServiceOptions{Catalog: cat})
	_, err := svc.ListBooks(context.Background(), ListBooksInput{})
	assert.Error(t, err)
	_, err = svc.Facets(context.Background())
	assert.Error(t, err)
}

func TestBookService_Facets(t *testing.T) {
	f, err := newBookService(&statsd.Recorder{}).Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2008, 1960, 1925}, f.Years)
	assert.Equal(t, devseed.CategoryNames(), f.Categories)
}
