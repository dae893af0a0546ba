package domain

import "context"

type CurrencyType string

const (
	CurrencyUSD CurrencyType = "USD"
	CurrencyEUR CurrencyType = "EUR"
	CurrencyAED CurrencyType = "AED"
)

var AllCurrencyTypes []CurrencyType = []CurrencyType{CurrencyUSD, CurrencyEUR, CurrencyAED}

func IsValidCurrencyType(s string) bool {
	for _, c := range AllCurrencyTypes {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Code is the identifier CSV imports match
// against. CurrencyPrice is kept as the entered string, as the original data
// did; consumers parse it when computing totals.
type Product struct {
	Id            string       `json:"id"`
	Name          string       `json:"name"`
	Code          string       `json:"code"`
	Irc           string       `json:"irc"`
	NetWeight     string       `json:"netWeight"`
	GrossWeight   string       `json:"grossWeight"`
	Description   string       `json:"description"`
	CurrencyPrice string       `json:"currencyPrice"`
	CurrencyType  CurrencyType `json:"currencyType"`
	Manufacturer  string       `json:"manufacturer,omitempty"`
}

// ProductStorage defines the interface for product-related database operations
type ProductStorage interface {
	PersistProduct(ctx context.Context, product Product) error
	GetProduct(ctx context.Context, productId string) (Product, error)
	GetAllProducts(ctx context.Context) ([]Product, error)
	DeleteProduct(ctx context.Context, productId string) error
	ReplaceAllProducts(ctx context.Context, products []Product) error
}
