package backend

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// AnonymousAuthor names comment authors that are not registered users
const AnonymousAuthor = "Cliente"

const jpegDataURLPrefix = "data:image/jpeg;base64,"

// ToDataURL turns a stored image into something a browser can render.
// Raw base64 is assumed to be JPEG.
func ToDataURL(image *string) *string {
	if image == nil || *image == "" {
		return nil
	}
	if strings.HasPrefix(*image, "data:") {
		out := *image
		return &out
	}
	out := jpegDataURLPrefix + *image
	return &out
}

// NormalizePrice converts a backend price (number, numeric string or null)
// into a finite float64. Anything else becomes 0.
func NormalizePrice(value interface{}) float64 {
	var price float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		price = v
	case float32:
		price = float64(v)
	case int:
		price = float64(v)
	case int64:
		price = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		price = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0
		}
		price = parsed
	default:
		return 0
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return price
}

// ConvertProduct maps a backend product to the catalog shape
func ConvertProduct(p domain.BackendProduct) domain.Product {
	return domain.Product{
		ID:          p.Code,
		Name:        p.Name,
		Price:       NormalizePrice(p.Price),
		Description: p.Description,
		ImageURL:    ToDataURL(p.Imagem),
		TentCode:    p.TentCode,
	}
}

// ConvertProducts maps a product list
func ConvertProducts(products []domain.BackendProduct) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, ConvertProduct(p))
	}
	return out
}

// ConvertUserProfile drops the password and renames the Portuguese fields
func ConvertUserProfile(u domain.BackendUser) domain.UserProfile {
	return domain.UserProfile{
		CPF:       u.CPF,
		Name:      u.Nome,
		Phone:     u.Telefone,
		Email:     u.Email,
		AvatarURL: ToDataURL(u.FotoPerfil),
	}
}

// ConvertStock maps a stock entry, including its embedded product
func ConvertStock(s domain.BackendStock) domain.StockEntry {
	entry := domain.StockEntry{
		ProductCode: s.ProductCode,
		TentCode:    s.TentCode,
		Quantity:    s.StockQuantity,
	}
	if s.Product != nil {
		product := ConvertProduct(*s.Product)
		entry.Product = &product
	}
	return entry
}

// ConvertTent maps a stall and its stock
func ConvertTent(t domain.BackendTent) domain.TentSummary {
	tent := domain.TentSummary{
		Code:       t.Code,
		Name:       t.Name,
		OwnerCPF:   t.CPFHolder,
		LicenseURL: ToDataURL(t.UserLicense),
		License:    t.UserLicense,
	}
	for _, item := range t.Items {
		tent.Stock = append(tent.Stock, ConvertStock(item))
	}
	return tent
}

// ConvertProductComments joins comments with their authors by CPF
func ConvertProductComments(comments []domain.BackendComment, users []domain.BackendUser) []domain.ProductComment {
	byCPF := make(map[string]domain.BackendUser, len(users))
	for _, u := range users {
		byCPF[u.CPF] = u
	}

	out := make([]domain.ProductComment, 0, len(comments))
	for _, c := range comments {
		comment := domain.ProductComment{
			ID:        c.ID,
			Text:      c.Texto,
			ProductID: c.CodProd,
			UserCPF:   c.CPFUsuario,
			UserName:  AnonymousAuthor,
		}
		if author, ok := byCPF[c.CPFUsuario]; ok {
			comment.UserName = author.Nome
			comment.UserAvatarURL = ToDataURL(author.FotoPerfil)
		}
		if c.DataPostagem != nil && !c.DataPostagem.IsZero() {
			posted := c.DataPostagem.Time
			comment.PostedAt = &posted
		}
		out = append(out, comment)
	}
	return out
}
