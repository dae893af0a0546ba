// Package reports aggregates orders, products and workflows into the
// figures shown on the reporting dashboard.
package reports

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"orderdesk/domain"
	"orderdesk/form"
	"orderdesk/jalali"
)

// customerNameField is the field name the customer report keys on. Workflows
// that want their orders counted toward unique customers name a field this.
const customerNameField = "customer_name"

const unknownManufacturer = "Unknown"

// Filter narrows a report to one workflow and/or a creation-date range.
// Zero values mean no filtering. Start and End are ISO timestamps; the range
// covers whole local days, start-of-day through end-of-day inclusive.
type Filter struct {
	WorkflowId string
	Start      string
	End        string
}

type ImportPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type ProductSales struct {
	ProductId   string  `json:"productId"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	TotalWeight float64 `json:"totalWeight"`
}

type ManufacturerShare struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StepDuration summarizes how long orders spent between two consecutive
// steps, over every order that completed both.
type StepDuration struct {
	Name     string  `json:"name"`
	AvgHours float64 `json:"avgHours"`
	AvgMs    float64 `json:"avgMs"`
	MinMs    float64 `json:"minMs"`
	MaxMs    float64 `json:"maxMs"`
	Count    int     `json:"count"`
}

type Report struct {
	TotalOrders           int                 `json:"totalOrders"`
	TotalImports          float64             `json:"totalImports"`
	UniqueCustomers       int                 `json:"uniqueCustomers"`
	ImportsOverTime       []ImportPoint       `json:"importsOverTime"`
	TopProductsByWeight   []ProductSales      `json:"topProductsByWeight"`
	ImportsByManufacturer []ManufacturerShare `json:"importsByManufacturer"`
	StepDurations         []StepDuration      `json:"stepDurations"`
}

// Build computes the report for the given data set. Orders whose workflow no
// longer exists are counted in TotalOrders but contribute nothing else.
func Build(workflows []domain.Workflow, orders []domain.Order, products []domain.Product, filter Filter) Report {
	workflowsById := make(map[string]*domain.Workflow, len(workflows))
	for i := range workflows {
		workflowsById[workflows[i].Id] = &workflows[i]
	}
	productsById := make(map[string]*domain.Product, len(products))
	for i := range products {
		productsById[products[i].Id] = &products[i]
	}

	filtered := filterOrders(orders, filter)

	var totalImports float64
	importsOverTime := map[string]float64{}
	productSales := map[string]*ProductSales{}
	customers := map[string]bool{}
	manufacturerImports := map[string]float64{}
	durations := map[string][]float64{}
	var durationOrder []string

	for _, order := range filtered {
		workflow, ok := workflowsById[order.WorkflowId]
		if !ok {
			continue
		}

		for _, step := range workflow.Steps {
			for _, field := range step.Fields {
				if field.Name != customerNameField {
					continue
				}
				if name, ok := order.StepsData[step.Id].Data[field.Name].(string); ok && name != "" {
					customers[strings.TrimSpace(name)] = true
				}
			}
		}

		var orderTotal float64
		for _, state := range order.StepsData {
			for _, value := range state.Data {
				for _, item := range form.ProductItems(value) {
					product, ok := productsById[item.ProductId]
					if !ok {
						continue
					}
					price, _ := strconv.ParseFloat(product.CurrencyPrice, 64)
					itemTotal := price * float64(item.Quantity)
					orderTotal += itemTotal

					manufacturer := product.Manufacturer
					if manufacturer == "" {
						manufacturer = unknownManufacturer
					}
					manufacturerImports[manufacturer] += itemTotal

					sales, ok := productSales[product.Id]
					if !ok {
						sales = &ProductSales{ProductId: product.Id, Name: product.Name}
						productSales[product.Id] = sales
					}
					netWeight, _ := strconv.ParseFloat(product.NetWeight, 64)
					sales.Quantity += item.Quantity
					sales.TotalWeight += netWeight * float64(item.Quantity)
				}
			}
		}

		totalImports += orderTotal
		if dateKey := jalali.ToJalali(order.CreatedAt); dateKey != "" {
			importsOverTime[dateKey] += orderTotal
		}

		for i := 0; i+1 < len(workflow.Steps); i++ {
			first := workflow.Steps[i]
			second := workflow.Steps[i+1]
			t1, err1 := domain.ParseISO(order.StepsData[first.Id].CompletedAt)
			t2, err2 := domain.ParseISO(order.StepsData[second.Id].CompletedAt)
			if err1 != nil || err2 != nil {
				continue
			}
			key := first.Title + " → " + second.Title
			if _, seen := durations[key]; !seen {
				durationOrder = append(durationOrder, key)
			}
			durations[key] = append(durations[key], float64(t2.Sub(t1).Milliseconds()))
		}
	}

	return Report{
		TotalOrders:           len(filtered),
		TotalImports:          totalImports,
		UniqueCustomers:       len(customers),
		ImportsOverTime:       sortedImports(importsOverTime),
		TopProductsByWeight:   topByWeight(productSales, 10),
		ImportsByManufacturer: manufacturerShares(manufacturerImports, 5),
		StepDurations:         stepDurations(durations, durationOrder),
	}
}

func filterOrders(orders []domain.Order, filter Filter) []domain.Order {
	var start, end int64
	hasStart, hasEnd := false, false
	if t, err := domain.ParseISO(filter.Start); err == nil {
		local := t.Local()
		y, m, d := local.Date()
		start = startOfDay(y, int(m), d)
		hasStart = true
	}
	if t, err := domain.ParseISO(filter.End); err == nil {
		local := t.Local()
		y, m, d := local.Date()
		end = startOfDay(y, int(m), d) + 24*60*60*1000 - 1
		hasEnd = true
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if filter.WorkflowId != "" && filter.WorkflowId != "all" && order.WorkflowId != filter.WorkflowId {
			continue
		}
		if hasStart || hasEnd {
			created, err := domain.ParseISO(order.CreatedAt)
			if err != nil {
				continue
			}
			millis := created.UnixMilli()
			if hasStart && millis < start {
				continue
			}
			if hasEnd && millis > end {
				continue
			}
		}
		filtered = append(filtered, order)
	}
	return filtered
}

func sortedImports(byDate map[string]float64) []ImportPoint {
	points := make([]ImportPoint, 0, len(byDate))
	for date, amount := range byDate {
		points = append(points, ImportPoint{Date: date, Amount: amount})
	}
	// Jalali yyyy/MM/dd keys sort chronologically as strings.
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func topByWeight(sales map[string]*ProductSales, limit int) []ProductSales {
	out := make([]ProductSales, 0, len(sales))
	for _, s := range sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalWeight != out[j].TotalWeight {
			return out[i].TotalWeight > out[j].TotalWeight
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// manufacturerShares keeps the top manufacturers by import value and folds
// the remainder into a single Other bucket.
func manufacturerShares(imports map[string]float64, limit int) []ManufacturerShare {
	shares := make([]ManufacturerShare, 0, len(imports))
	for name, value := range imports {
		shares = append(shares, ManufacturerShare{Name: name, Value: value})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) <= limit {
		return shares
	}
	var other float64
	for _, s := range shares[limit:] {
		other += s.Value
	}
	shares = shares[:limit]
	if other > 0 {
		shares = append(shares, ManufacturerShare{Name: "Other", Value: other})
	}
	return shares
}

func stepDurations(durations map[string][]float64, order []string) []StepDuration {
	out := make([]StepDuration, 0, len(order))
	for _, name := range order {
		samples := durations[name]
		var total float64
		min, max := samples[0], samples[0]
		for _, d := range samples {
			total += d
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
		}
		avg := total / float64(len(samples))
		out = append(out, StepDuration{
			Name:     name,
			AvgHours: math.Round(avg/(1000*60*60)*100) / 100,
			AvgMs:    avg,
			MinMs:    min,
			MaxMs:    max,
			Count:    len(samples),
		})
	}
	return out
}

func startOfDay(year, month, day int) int64 {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local).UnixMilli()
}
