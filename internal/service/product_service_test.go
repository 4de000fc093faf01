package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"catalog-api/internal/cache"
	"catalog-api/internal/models"
	"catalog-api/internal/repository/mocks"
)

func sampleProducts() []models.Product {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: 1, SKU: "SKU-1", Name: "Lamp", Category: "A", Brand: "X", Price: decimal.RequireFromString("9.99"), Rating: decimal.RequireFromString("4.50"), CreatedAt: now, UpdatedAt: now},
		{ID: 2, SKU: "SKU-2", Name: "Desk", Category: "A", Brand: "Y", Price: decimal.RequireFromString("120.00"), Rating: decimal.RequireFromString("3.00"), CreatedAt: now, UpdatedAt: now},
	}
}

func newService(t *testing.T, backend cache.Backend) (*ProductService, *mocks.MockProductRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	facade := cache.NewFacade(backend, "products", cache.DefaultTTLs(), zerolog.Nop())
	return NewProductService(repo, facade, zerolog.Nop()), repo
}

func TestList_ColdThenWarmIsByteIdentical(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	ctx := context.Background()
	spec := models.DefaultQuerySpec()

	repo.EXPECT().FindAll(gomock.Any(), spec).Return(sampleProducts(), int64(2), nil).Times(1)

	cold, err := svc.List(ctx, spec)
	require.NoError(t, err)
	assert.False(t, cold.Hit)

	warm, err := svc.List(ctx, spec)
	require.NoError(t, err)
	assert.True(t, warm.Hit)
	assert.Equal(t, cold.Payload, warm.Payload)

	var body struct {
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
		Page  int              `json:"page"`
		Limit int              `json:"limit"`
		Pages int64            `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(cold.Payload, &body))
	assert.Len(t, body.Data, 2)
	assert.EqualValues(t, 2, body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 50, body.Limit)
	assert.EqualValues(t, 1, body.Pages)
}

func TestList_EquivalentSpecsShareEntry(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	ctx := context.Background()

	a, err := models.NewQuerySpec(models.ListParams{Category: "A", MinPrice: "50", Search: "Lamp"})
	require.NoError(t, err)
	b, err := models.NewQuerySpec(models.ListParams{Search: "lamp ", MinPrice: "50.00", Category: "A", SortOrder: "ASC"})
	require.NoError(t, err)

	repo.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(sampleProducts()[:1], int64(1), nil).Times(1)

	_, err = svc.List(ctx, a)
	require.NoError(t, err)
	res, err := svc.List(ctx, b)
	require.NoError(t, err)
	assert.True(t, res.Hit)
}

func TestList_InvalidSpecNeverReachesStore(t *testing.T) {
	svc, _ := newService(t, cache.NewMemoryBackend(100))

	spec := models.DefaultQuerySpec()
	spec.Limit = 0

	_, err := svc.List(context.Background(), spec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidQuery))
}

func TestList_EmptyPage(t *testing.T) {
	svc, repo := newService(t, cache.NoopBackend{})
	spec := models.DefaultQuerySpec()
	spec.Page = 99

	repo.EXPECT().FindAll(gomock.Any(), spec).Return(nil, int64(2), nil)

	res, err := svc.List(context.Background(), spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"total":2,"page":99,"limit":50,"pages":1}`, string(res.Payload))
}

func TestList_StoreUnavailableIsNotCached(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	ctx := context.Background()
	spec := models.DefaultQuerySpec()

	storeErr := errors.Join(models.ErrStoreUnavailable, errors.New("dial tcp: refused"))
	gomock.InOrder(
		repo.EXPECT().FindAll(gomock.Any(), spec).Return(nil, int64(0), storeErr),
		repo.EXPECT().FindAll(gomock.Any(), spec).Return(sampleProducts(), int64(2), nil),
	)

	_, err := svc.List(ctx, spec)
	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))

	res, err := svc.List(ctx, spec)
	require.NoError(t, err)
	assert.False(t, res.Hit)
}

func TestList_ConcurrentMissesEachQueryStore(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	spec := models.DefaultQuerySpec()

	// barrera: cada llamada espera a la otra, así ambas están dentro del repo a la vez
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	repo.EXPECT().FindAll(gomock.Any(), spec).DoAndReturn(
		func(context.Context, models.QuerySpec) ([]models.Product, int64, error) {
			arrived.Done()
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			return sampleProducts(), int64(2), nil
		}).Times(2)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.List(context.Background(), spec)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.False(t, results[0].Hit)
	assert.False(t, results[1].Hit)
	assert.Equal(t, results[0].Payload, results[1].Payload)
}

func TestGet(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	ctx := context.Background()
	p := sampleProducts()[0]

	repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(&p, nil).Times(1)

	res, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, string(res.Payload), `"sku":"SKU-1"`)
	assert.Contains(t, string(res.Payload), `"description":null`)

	res, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Hit)
}

func TestGet_NotFoundIsNotCached(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	ctx := context.Background()

	repo.EXPECT().FindByID(gomock.Any(), int64(404)).Return(nil, models.ErrNotFound).Times(2)

	for range 2 {
		_, err := svc.Get(ctx, 404)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
}

func TestGet_RejectsNonPositiveID(t *testing.T) {
	svc, _ := newService(t, cache.NoopBackend{})

	_, err := svc.Get(context.Background(), 0)
	var qe *models.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "id", qe.Field)
}

func TestStats_RecomputedAfterExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	backend, err := cache.NewRedisBackend("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	svc, repo := newService(t, backend)
	ctx := context.Background()

	first := &models.ProductStats{TotalProducts: 3, AvgRating: decimal.RequireFromString("4.00")}
	second := &models.ProductStats{TotalProducts: 4, AvgRating: decimal.RequireFromString("4.25")}
	gomock.InOrder(
		repo.EXPECT().Stats(gomock.Any()).Return(first, nil),
		repo.EXPECT().Stats(gomock.Any()).Return(second, nil),
	)

	res, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(res.Payload), `"total_products":3`)

	res, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, res.Hit)

	mr.FastForward(5*time.Minute + time.Second)

	res, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Contains(t, string(res.Payload), `"total_products":4`)
}

func TestCategoriesAndBrands(t *testing.T) {
	svc, repo := newService(t, cache.NewMemoryBackend(100))
	ctx := context.Background()

	repo.EXPECT().Categories(gomock.Any()).Return([]string{"Books", "Toys"}, nil)
	repo.EXPECT().Brands(gomock.Any()).Return([]string{}, nil)

	res, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories":["Books","Toys"],"total":2}`, string(res.Payload))

	res, err = svc.Brands(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"brands":[],"total":0}`, string(res.Payload))
}

func TestReady(t *testing.T) {
	svc, repo := newService(t, cache.NoopBackend{})
	repo.EXPECT().Ping(gomock.Any()).Return(models.ErrStoreUnavailable)

	r := svc.Ready(context.Background())
	assert.ErrorIs(t, r.Store, models.ErrStoreUnavailable)
	assert.NoError(t, r.Cache)
}
