package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

type fakeSales struct {
	sales []domain.Sale
	err   error
}

func (f fakeSales) FetchSales(ctx context.Context) ([]domain.Sale, error) {
	return f.sales, f.err
}

func sale(id int, user string, y, m, d int) domain.Sale {
	return domain.Sale{
		ID:       id,
		UserCode: user,
		TentCode: 1,
		SaleDate: domain.LocalDate{Year: y, Month: m, Day: d},
		Items:    []domain.SaleItem{{ProductCode: 7, SaleQuantity: 1, SalePrice: 10}},
	}
}

func TestLocalProviderFiltersAndSorts(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)
	p := NewLocalProvider(s)
	ctx := context.Background()

	require.NoError(t, p.Record(ctx, sale(1, "123", 2025, 1, 10)))
	require.NoError(t, p.Record(ctx, sale(2, "456", 2025, 3, 1)))
	require.NoError(t, p.Record(ctx, sale(3, "123", 2025, 11, 28)))
	require.NoError(t, p.Record(ctx, sale(4, "123", 2024, 12, 31)))

	got, err := p.ListByUser(ctx, "123")
	require.NoError(t, err)

	ids := make([]int, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{3, 1, 4}, ids)
}

func TestLocalProviderReadsSeededList(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.SetItem(ctx, LocalStorageKey,
		`[{"id":9,"saleDate":[2025,5,2],"tentCode":1,"userCode":"123","items":[{"productCode":7,"saleQuantity":2,"salePrice":4.5}]}]`))

	got, err := NewLocalProvider(s).ListByUser(ctx, "123")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].Total().String())
}

func TestLocalProviderEmpty(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)

	got, err := NewLocalProvider(s).ListByUser(context.Background(), "123")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAPIProvider(t *testing.T) {
	p := NewAPIProvider(fakeSales{sales: []domain.Sale{
		sale(1, "123", 2025, 1, 10),
		sale(2, "123", 2025, 1, 10),
		sale(3, "456", 2025, 6, 1),
	}})
	ctx := context.Background()

	assert.NoError(t, p.Record(ctx, sale(4, "123", 2025, 1, 1)))

	got, err := p.ListByUser(ctx, "123")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

func TestAPIProviderPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewAPIProvider(fakeSales{err: boom}).ListByUser(context.Background(), "123")
	assert.ErrorIs(t, err, boom)
}

func TestNewFactory(t *testing.T) {
	s, err := storage.NewMemoryBackend().Session("sess-1")
	require.NoError(t, err)

	local, err := NewFactory(KindLocal, nil, nil)
	require.NoError(t, err)
	traced, ok := local(s).(*TracingProvider)
	require.True(t, ok)
	assert.IsType(t, &LocalProvider{}, traced.Provider)

	api, err := NewFactory(KindAPI, fakeSales{}, nil)
	require.NoError(t, err)
	traced, ok = api(s).(*TracingProvider)
	require.True(t, ok)
	assert.IsType(t, &APIProvider{}, traced.Provider)
	assert.Same(t, api(s), api(nil), "api provider is shared across sessions")

	_, err = NewFactory(KindAPI, nil, nil)
	assert.Error(t, err)
	_, err = NewFactory(KindPostgres, nil, nil)
	assert.Error(t, err)
	_, err = NewFactory("mongo", nil, nil)
	assert.Error(t, err)
}

func TestSaleRecordKeepsItemsAndDate(t *testing.T) {
	record, err := toRecord(sale(42, "123", 2025, 11, 28))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC), record.SaleDate)
	assert.Equal(t, "storefront_sales", record.TableName())

	back, err := fromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, sale(42, "123", 2025, 11, 28), back)
}

func TestTracingProviderRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)

	boom := errors.New("boom")
	provider := WithTracing(KindAPI, NewAPIProvider(fakeSales{err: boom}))

	_, err := provider.ListByUser(context.Background(), "123")
	assert.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "history.ListByUser", spans[0].Name())
	assert.Equal(t, "boom", spans[0].Status().Description)
}
