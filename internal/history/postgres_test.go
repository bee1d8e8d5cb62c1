package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// newMirror runs the provider against a throwaway SQLite file. The queries
// stay portable between SQLite and PostgreSQL.
func newMirror(t *testing.T) (*PostgresProvider, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "history.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	provider, err := NewPostgresProvider(db)
	require.NoError(t, err)
	return provider, db
}

func mirroredSale(id, day int, user string, quantity int) domain.Sale {
	return domain.Sale{
		ID:       id,
		SaleDate: domain.LocalDate{Year: 2025, Month: 11, Day: day},
		TentCode: 1,
		UserCode: user,
		Items:    []domain.SaleItem{{ProductCode: 7, SaleQuantity: quantity, SalePrice: 12.5}},
	}
}

func TestPostgresProviderRecordDeduplicatesBackendID(t *testing.T) {
	ctx := context.Background()
	provider, db := newMirror(t)

	require.NoError(t, provider.Record(ctx, mirroredSale(10, 20, "123", 1)))
	require.NoError(t, provider.Record(ctx, mirroredSale(10, 20, "123", 5)))

	var count int64
	require.NoError(t, db.Model(&SaleRecord{}).Where("backend_id = ?", 10).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	sales, err := provider.ListByUser(ctx, "123")
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 1, sales[0].Items[0].SaleQuantity)
}

func TestPostgresProviderRecordsSalesWithoutBackendID(t *testing.T) {
	ctx := context.Background()
	provider, db := newMirror(t)

	require.NoError(t, provider.Record(ctx, mirroredSale(0, 20, "123", 1)))
	require.NoError(t, provider.Record(ctx, mirroredSale(0, 20, "123", 2)))

	var count int64
	require.NoError(t, db.Model(&SaleRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPostgresProviderListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	provider, _ := newMirror(t)

	for _, sale := range []domain.Sale{
		mirroredSale(1, 1, "123", 1),
		mirroredSale(3, 28, "123", 1),
		mirroredSale(2, 28, "123", 1),
		mirroredSale(4, 15, "456", 1),
		mirroredSale(5, 15, "123", 1),
	} {
		require.NoError(t, provider.Record(ctx, sale))
	}

	sales, err := provider.ListByUser(ctx, "123")
	require.NoError(t, err)

	ids := make([]int, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
		assert.Equal(t, "123", sale.UserCode)
	}
	assert.Equal(t, []int{3, 2, 5, 1}, ids)
	assert.Equal(t, domain.LocalDate{Year: 2025, Month: 11, Day: 28}, sales[0].SaleDate)

	none, err := provider.ListByUser(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, none)
}
