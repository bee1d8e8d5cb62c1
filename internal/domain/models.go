package domain

import "time"

// Normalized shapes handed to the presentation layer.

// Product is a catalog product
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	TentCode    int     `json:"tentCode,omitempty"`
}

// UserProfile is a registered user. The password never leaves the backend client.
type UserProfile struct {
	CPF       string  `json:"cpf"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

// StockEntry is the quantity a stall holds of one product
type StockEntry struct {
	ProductCode int      `json:"productCode"`
	TentCode    int      `json:"tentCode"`
	Quantity    int      `json:"quantity"`
	Product     *Product `json:"product,omitempty"`
}

// TentSummary is a stall
type TentSummary struct {
	Code       int          `json:"code"`
	Name       string       `json:"name"`
	OwnerCPF   string       `json:"ownerCpf"`
	LicenseURL *string      `json:"licenseUrl"`
	Stock      []StockEntry `json:"stock,omitempty"`

	// License is the backend value behind LicenseURL, sent back on updates
	License *string `json:"-"`
}

// StockOf returns the stock entry for productCode
func (t TentSummary) StockOf(productCode int) (StockEntry, bool) {
	for _, entry := range t.Stock {
		if entry.ProductCode == productCode {
			return entry, true
		}
	}
	return StockEntry{}, false
}

// ProductComment is a comment joined with its author
type ProductComment struct {
	ID            int        `json:"id"`
	Text          string     `json:"text"`
	ProductID     int        `json:"productId"`
	UserCPF       string     `json:"userCpf"`
	UserName      string     `json:"userName"`
	UserAvatarURL *string    `json:"userAvatarUrl"`
	PostedAt      *time.Time `json:"postedAt"`
}
