package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// SaleRecord is one row of the history mirror
type SaleRecord struct {
	ID        uint      `gorm:"primaryKey"`
	BackendID int       `gorm:"index"`
	UserCode  string    `gorm:"index;not null"`
	TentCode  int       `gorm:"not null"`
	SaleDate  time.Time `gorm:"type:date;not null"`
	Items     string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName keeps the mirror apart from the backend tables
func (SaleRecord) TableName() string {
	return "storefront_sales"
}

// PostgresProvider mirrors sales into a PostgreSQL table
type PostgresProvider struct {
	db *gorm.DB
}

// NewPostgresProvider migrates the mirror table and returns the provider
func NewPostgresProvider(db *gorm.DB) (*PostgresProvider, error) {
	if err := db.AutoMigrate(&SaleRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sales history: %w", err)
	}
	logger.Logger.Info().Msg("Sales history table migrated")
	return &PostgresProvider{db: db}, nil
}

// Record stores sale. A sale already mirrored under the same backend id is kept as is.
func (p *PostgresProvider) Record(ctx context.Context, sale domain.Sale) error {
	record, err := toRecord(sale)
	if err != nil {
		return err
	}

	db := p.db.WithContext(ctx)
	if sale.ID != 0 {
		var existing SaleRecord
		err = db.Where(SaleRecord{BackendID: sale.ID}).Attrs(record).FirstOrCreate(&existing).Error
	} else {
		err = db.Create(&record).Error
	}
	if err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	return nil
}

// ListByUser returns the mirrored sales of userCode
func (p *PostgresProvider) ListByUser(ctx context.Context, userCode string) ([]domain.Sale, error) {
	var records []SaleRecord
	if err := p.db.WithContext(ctx).
		Where("user_code = ?", userCode).
		Order("sale_date DESC").
		Order("backend_id DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := make([]domain.Sale, 0, len(records))
	for _, record := range records {
		sale, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	SortNewestFirst(sales)
	return sales, nil
}

func toRecord(sale domain.Sale) (SaleRecord, error) {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return SaleRecord{}, fmt.Errorf("failed to encode sale items: %w", err)
	}
	return SaleRecord{
		BackendID: sale.ID,
		UserCode:  sale.UserCode,
		TentCode:  sale.TentCode,
		SaleDate:  sale.SaleDate.Time(),
		Items:     string(items),
	}, nil
}

func fromRecord(record SaleRecord) (domain.Sale, error) {
	var items []domain.SaleItem
	if err := json.Unmarshal([]byte(record.Items), &items); err != nil {
		return domain.Sale{}, fmt.Errorf("failed to decode items of sale %d: %w", record.ID, err)
	}
	return domain.Sale{
		ID:       record.BackendID,
		SaleDate: domain.NewLocalDate(record.SaleDate),
		TentCode: record.TentCode,
		UserCode: record.UserCode,
		Items:    items,
	}, nil
}
