package form

import (
	"strconv"

	"orderdesk/domain"
)

// ProductLine is one selected product resolved against the live catalog.
// Product is nil when the catalog entry has been deleted; such lines
// contribute nothing to the totals.
type ProductLine struct {
	Item      domain.ProductItem `json:"item"`
	Product   *domain.Product    `json:"product,omitempty"`
	LineTotal float64            `json:"lineTotal"`
}

// ProductView is the render state of a product field: per-row line totals
// and a grand total, all computed from current catalog prices.
type ProductView struct {
	Lines      []ProductLine       `json:"lines"`
	GrandTotal float64             `json:"grandTotal"`
	Currency   domain.CurrencyType `json:"currency"`
}

func (it *Interpreter) productView(items []domain.ProductItem) ProductView {
	view := ProductView{Lines: make([]ProductLine, 0, len(items)), Currency: domain.CurrencyUSD}
	for i, item := range items {
		line := ProductLine{Item: item}
		if product, ok := it.lookup(item.ProductId); ok {
			p := product
			line.Product = &p
			line.LineTotal = LineTotal(product, item.Quantity)
			if i == 0 {
				// Grand total assumes a consistent currency and shows the
				// first selected product's.
				view.Currency = product.CurrencyType
			}
		}
		view.GrandTotal += line.LineTotal
		view.Lines = append(view.Lines, line)
	}
	return view
}

// LineTotal is unit price times quantity; an unparseable price counts as 0.
func LineTotal(product domain.Product, quantity int) float64 {
	price, err := strconv.ParseFloat(product.CurrencyPrice, 64)
	if err != nil {
		price = 0
	}
	return price * float64(quantity)
}

// ToggleProduct adds the product with quantity 1 if absent, or removes it if
// already selected.
func ToggleProduct(items []domain.ProductItem, productId string) []domain.ProductItem {
	for i, item := range items {
		if item.ProductId == productId {
			return append(append([]domain.ProductItem{}, items[:i]...), items[i+1:]...)
		}
	}
	out := append([]domain.ProductItem{}, items...)
	return append(out, domain.ProductItem{ProductId: productId, Quantity: 1})
}

// SetQuantity updates the quantity of a selected product. Non-numeric input
// becomes 0, matching the original selector's parse behavior.
func SetQuantity(items []domain.ProductItem, productId, quantity string) []domain.ProductItem {
	qty, err := strconv.Atoi(quantity)
	if err != nil {
		qty = 0
	}
	out := append([]domain.ProductItem{}, items...)
	for i, item := range out {
		if item.ProductId == productId {
			out[i].Quantity = qty
		}
	}
	return out
}
