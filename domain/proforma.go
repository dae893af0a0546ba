package domain

import "context"

// ProformaItem snapshots the product's name, code, price and currency at the
// time it is added. Later catalog edits never change existing proforma
// totals, in contrast to order product fields, which always resolve against
// the live catalog.
type ProformaItem struct {
	ProductId   string       `json:"productId"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Irc         string       `json:"irc"`
	NetWeight   string       `json:"netWeight"`
	GrossWeight string       `json:"grossWeight"`
	Quantity    int          `json:"quantity"`
	Price       float64      `json:"price"`
	Currency    CurrencyType `json:"currency"`
}

// Proforma is a proforma invoice. Total is computed when the proforma is
// saved and not recomputed live.
type Proforma struct {
	Id          string         `json:"id"`
	CompanyName string         `json:"companyName"`
	Date        string         `json:"date"`
	Items       []ProformaItem `json:"items"`
	Total       float64        `json:"total"`
}

// ItemsTotal sums price*quantity over the items.
func (p *Proforma) ItemsTotal() float64 {
	var total float64
	for _, item := range p.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ProformaStorage defines the interface for proforma-related database operations
type ProformaStorage interface {
	PersistProforma(ctx context.Context, proforma Proforma) error
	GetProforma(ctx context.Context, proformaId string) (Proforma, error)
	GetAllProformas(ctx context.Context) ([]Proforma, error)
	DeleteProforma(ctx context.Context, proformaId string) error
	ReplaceAllProformas(ctx context.Context, proformas []Proforma) error
}
