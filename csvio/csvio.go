// Package csvio handles the CSV surfaces of the dashboard: bulk product
// import, proforma item import, proforma export and the downloadable sample
// files. Files are UTF-8 with a BOM so spreadsheet applications open Persian
// text correctly.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"orderdesk/domain"
)

const utf8BOM = "\ufeff"

var productHeader = []string{"name", "code", "irc", "netWeight", "currencyPrice", "currencyType", "manufacturer"}

// requiredProductColumns must all be present in an import header; extra
// columns are ignored and column order does not matter.
var requiredProductColumns = []string{"name", "code", "currencyPrice", "currencyType"}

// ImportProducts parses a product import file. Every row must carry a name
// and a code; the first invalid row aborts the whole import so a partial
// file is never applied.
func ImportProducts(r io.Reader) ([]domain.Product, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("file is empty or has no data rows")
	}

	header := trimAll(records[0])
	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range requiredProductColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	cell := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	products := make([]domain.Product, 0, len(records)-1)
	for rowIndex, row := range records[1:] {
		name := cell(row, "name")
		code := cell(row, "code")
		if name == "" || code == "" {
			return nil, fmt.Errorf("row %d: name and code are required", rowIndex+2)
		}

		currencyType := domain.CurrencyUSD
		if ct := cell(row, "currencyType"); ct == string(domain.CurrencyEUR) || ct == string(domain.CurrencyAED) {
			currencyType = domain.CurrencyType(ct)
		}
		currencyPrice := cell(row, "currencyPrice")
		if currencyPrice == "" {
			currencyPrice = "0"
		}

		products = append(products, domain.Product{
			Id:            domain.NewId("prod"),
			Name:          name,
			Code:          code,
			Irc:           cell(row, "irc"),
			NetWeight:     cell(row, "netWeight"),
			CurrencyPrice: currencyPrice,
			CurrencyType:  currencyType,
			Manufacturer:  cell(row, "manufacturer"),
		})
	}
	return products, nil
}

// ImportProformaItems parses a proforma item file and resolves each row
// against the catalog by exact product code. Valid rows become snapshot
// items; invalid rows are reported in the returned messages without
// aborting the rest of the file.
func ImportProformaItems(r io.Reader, catalog []domain.Product) ([]domain.ProformaItem, []string, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("file is empty or has no data rows")
	}

	header := trimAll(records[0])
	if len(header) < 2 || header[0] != "product_code" || header[1] != "quantity" {
		return nil, nil, fmt.Errorf("file must have product_code and quantity columns")
	}

	byCode := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		byCode[p.Code] = p
	}

	var items []domain.ProformaItem
	var rowErrors []string
	for rowIndex, row := range records[1:] {
		var code, quantityStr string
		if len(row) > 0 {
			code = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			quantityStr = strings.TrimSpace(row[1])
		}
		product, found := byCode[code]
		quantity, err := strconv.Atoi(quantityStr)
		if !found || err != nil || quantity <= 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid product code or quantity", rowIndex+2))
			continue
		}
		items = AddItem(items, product, quantity)
	}
	return items, rowErrors, nil
}

// AddItem appends a snapshot item for the product, or adds the quantity to
// an existing item for the same product.
func AddItem(items []domain.ProformaItem, product domain.Product, quantity int) []domain.ProformaItem {
	for i := range items {
		if items[i].ProductId == product.Id {
			items[i].Quantity += quantity
			return items
		}
	}
	price, _ := strconv.ParseFloat(product.CurrencyPrice, 64)
	return append(items, domain.ProformaItem{
		ProductId:   product.Id,
		Name:        product.Name,
		Code:        product.Code,
		Irc:         product.Irc,
		NetWeight:   product.NetWeight,
		GrossWeight: product.GrossWeight,
		Quantity:    quantity,
		Price:       price,
		Currency:    product.CurrencyType,
	})
}

// ExportProforma renders a proforma as a CSV file with one row per item and
// a trailing total row.
func ExportProforma(proforma domain.Proforma) []byte {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Write([]string{"name", "code", "irc", "netWeight", "grossWeight", "quantity", "unitPrice", "lineTotal"})
	for _, item := range proforma.Items {
		w.Write([]string{
			item.Name,
			item.Code,
			item.Irc,
			item.NetWeight,
			item.GrossWeight,
			strconv.Itoa(item.Quantity),
			formatAmount(item.Price),
			formatAmount(item.Price * float64(item.Quantity)),
		})
	}
	w.Write([]string{"", "", "", "", "", "", "total", formatAmount(proforma.Total)})
	w.Flush()
	return buf.Bytes()
}

// ExportFilename builds the download name for a proforma export.
func ExportFilename(proforma domain.Proforma) string {
	company := strings.Join(strings.Fields(proforma.CompanyName), "_")
	if company == "" {
		company = "export"
	}
	return "proforma-" + company + ".csv"
}

// ProductImportSample returns the downloadable product import template.
func ProductImportSample() []byte {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Write(productHeader)
	w.Write([]string{"Sample product 1", "PROD-001", "12345", "12.5", "150.50", "USD", "Sample manufacturer A"})
	w.Write([]string{"Sample product 2", "PROD-002", "67890", "0.8", "220.00", "EUR", "Sample manufacturer B"})
	w.Flush()
	return buf.Bytes()
}

// ProformaItemsSample returns the downloadable proforma item template.
func ProformaItemsSample() []byte {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Write([]string{"product_code", "quantity"})
	w.Write([]string{"PROD-001", "5"})
	w.Write([]string{"PROD-002", "10"})
	w.Flush()
	return buf.Bytes()
}

func readRecords(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), utf8BOM)
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	// Drop rows that are entirely blank.
	kept := records[:0]
	for _, row := range records {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
