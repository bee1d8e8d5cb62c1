package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDateAcceptsBothEncodings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LocalDate
	}{
		{name: "array", input: `[2025,11,28]`, want: LocalDate{2025, 11, 28}},
		{name: "string", input: `"2025-11-28"`, want: LocalDate{2025, 11, 28}},
		{name: "null", input: `null`, want: LocalDate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LocalDate
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalDateRejectsGarbage(t *testing.T) {
	var d LocalDate
	assert.Error(t, json.Unmarshal([]byte(`[2025,11]`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"28/11/2025"`), &d))
}

func TestLocalDateWritesParts(t *testing.T) {
	raw, err := json.Marshal(LocalDate{2025, 1, 9})
	require.NoError(t, err)
	assert.JSONEq(t, `[2025,1,9]`, string(raw))
}

func TestLocalDateTimeAcceptsBothEncodings(t *testing.T) {
	var fromArray LocalDateTime
	require.NoError(t, json.Unmarshal([]byte(`[2025,11,28,14,30,5]`), &fromArray))
	assert.Equal(t, time.Date(2025, 11, 28, 14, 30, 5, 0, time.UTC), fromArray.Time)

	var fromString LocalDateTime
	require.NoError(t, json.Unmarshal([]byte(`"2025-11-28T14:30:05"`), &fromString))
	assert.True(t, fromArray.Time.Equal(fromString.Time))
}

func TestSaleTotal(t *testing.T) {
	sale := Sale{Items: []SaleItem{
		{ProductCode: 1, SaleQuantity: 3, SalePrice: 0.1},
		{ProductCode: 2, SaleQuantity: 2, SalePrice: 4.5},
	}}

	assert.Equal(t, "9.3", sale.Total().String())
}

func TestTentStockOf(t *testing.T) {
	tent := TentSummary{Stock: []StockEntry{{ProductCode: 4, Quantity: 10}}}

	entry, ok := tent.StockOf(4)
	assert.True(t, ok)
	assert.Equal(t, 10, entry.Quantity)

	_, ok = tent.StockOf(5)
	assert.False(t, ok)
}
