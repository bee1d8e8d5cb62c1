package domain

// Shapes exchanged with the marketplace backend. Field names follow the
// backend JSON contract, which mixes Portuguese and English.

// BackendProduct is a product as served by /products
type BackendProduct struct {
	Code        int         `json:"code"`
	Name        string      `json:"name"`
	Price       interface{} `json:"price"` // number, numeric string or null
	Description *string     `json:"description"`
	Imagem      *string     `json:"imagem"`
	TentCode    int         `json:"tentCode,omitempty"`
}

// BackendUser is a user as served by /usuarios
type BackendUser struct {
	CPF        string  `json:"cpf"`
	Nome       string  `json:"nome"`
	Telefone   string  `json:"telefone"`
	Email      string  `json:"email"`
	Senha      string  `json:"senha,omitempty"`
	FotoPerfil *string `json:"fotoPerfil"`
}

// BackendComment is a comment as served by /comentarios
type BackendComment struct {
	ID           int            `json:"id,omitempty"`
	Texto        string         `json:"texto"`
	CodProd      int            `json:"codProd"`
	CPFUsuario   string         `json:"cpfUsuario"`
	DataPostagem *LocalDateTime `json:"dataPostagem,omitempty"`
}

// BackendStock is one stock entry of a stall
type BackendStock struct {
	ProductCode   int             `json:"productCode"`
	TentCode      int             `json:"tentCode"`
	StockQuantity int             `json:"stockQuantity"`
	Product       *BackendProduct `json:"product,omitempty"`
}

// BackendTent is a stall as served by /tents
type BackendTent struct {
	Code        int            `json:"code,omitempty"`
	CPFHolder   string         `json:"cpfHolder"`
	Name        string         `json:"name"`
	UserLicense *string        `json:"userLicense"`
	Items       []BackendStock `json:"items,omitempty"`
}
