// internal/pipeline/transform.go
package pipeline

import (
	"math"
	"strings"

	"github.com/platable/insights-backend/internal/domain"
	"github.com/platable/insights-backend/internal/ingest"
	"github.com/platable/insights-backend/internal/mapper"
	"github.com/platable/insights-backend/internal/normalize"
)

// Result is the output of one transform run: the normalized orders plus the
// header mapping that produced them, for reporting back to the uploader.
type Result struct {
	Orders   []domain.Order
	Mapping  mapper.Mapping
	Headers  []string
	Unmapped []string
}

// Transform maps the raw table's headers onto the canonical field set,
// normalizes every row, and derives the financial and impact metrics.
// It is a pure function of (table, params): same input, same output.
// Per-cell parse failures degrade to nil/default and never abort the row.
func Transform(table *ingest.RawTable, params domain.ImpactParams) *Result {
	mapping := mapper.MapHeaders(table.Headers)

	res := &Result{
		Mapping: mapping,
		Headers: table.Headers,
		Orders:  make([]domain.Order, 0, len(table.Rows)),
	}
	for _, field := range mapper.CanonicalFields() {
		if !mapping.Has(field) {
			res.Unmapped = append(res.Unmapped, field)
		}
	}

	for _, row := range table.Rows {
		cell := func(field string) string {
			if idx, ok := mapping[field]; ok && idx < len(row) {
				return row[idx]
			}
			return ""
		}
		res.Orders = append(res.Orders, buildOrder(cell, params))
	}

	return res
}

func buildOrder(cell func(string) string, params domain.ImpactParams) domain.Order {
	o := domain.Order{
		OrderNumber:    strings.TrimSpace(cell(mapper.FieldOrderNumber)),
		OrderState:     normalize.NormalizeState(cell(mapper.FieldOrderState)),
		ServiceMode:    normalize.TitleCase(cell(mapper.FieldServiceMode)),
		Brand:          strings.TrimSpace(cell(mapper.FieldBrand)),
		StoreName:      strings.TrimSpace(cell(mapper.FieldStoreName)),
		ItemName:       strings.TrimSpace(cell(mapper.FieldItemName)),
		AccountManager: strings.TrimSpace(cell(mapper.FieldAccountManager)),
		OrderValue:     normalize.ToFloat(cell(mapper.FieldOrderValue)),
		Quantity:       normalize.ParseQuantity(cell(mapper.FieldQuantity)),
		Date:           normalize.ParseDate(cell(mapper.FieldDate)),
		Hour:           normalize.ParseHour(cell(mapper.FieldTime)),
		Customer: normalize.CustomerIdentity(
			cell(mapper.FieldCountryCode),
			cell(mapper.FieldPhoneNumber),
			cell(mapper.FieldEmail),
		),
		CommissionRate: normalize.PctToDecimal(cell(mapper.FieldCommission)),
		PGRate:         normalize.PctToDecimal(cell(mapper.FieldPG)),
	}
	o.TimeBucket = domain.BucketForHour(o.Hour)
	o.IsPickup = o.ServiceMode == domain.ServiceModePickup

	deriveFinancials(&o)
	deriveImpact(&o, cell(mapper.FieldOrderWeightKg), params)

	return o
}

// deriveFinancials computes the platform's share of the order. Missing rate
// components contribute zero to revenue; payout is undefined without an
// order value.
func deriveFinancials(o *domain.Order) {
	if o.OrderValue != nil {
		if o.CommissionRate != nil {
			amt := round2(*o.OrderValue * *o.CommissionRate)
			o.CommissionAmount = &amt
		}
		if o.PGRate != nil {
			amt := round2(*o.OrderValue * *o.PGRate)
			o.PGAmount = &amt
		}
	}
	o.Revenue = round2(orZero(o.CommissionAmount) + orZero(o.PGAmount))
	if o.OrderValue != nil {
		payout := round2(*o.OrderValue - o.Revenue)
		o.Payout = &payout
	}
}

// deriveImpact computes the environmental metrics from the configured
// assumptions. The pickup component models the delivery trip that did not
// happen because the customer collected the order.
func deriveImpact(o *domain.Order, rawWeight string, params domain.ImpactParams) {
	o.FoodKg = params.AvgOrderWeightKg
	if w := normalize.ToFloat(rawWeight); w != nil {
		o.FoodKg = *w
	}
	if params.KgPerMeal > 0 {
		o.Meals = o.FoodKg / params.KgPerMeal
	}
	o.CO2eFood = o.FoodKg * params.CO2ePerKgFoodRescued
	if params.EnablePickupCO2eComponent && o.IsPickup {
		o.PickupCO2eSaved = math.Max(params.LastMileCO2eDeliveryKg-params.LastMileCO2ePickupKg, 0)
	}
	o.CO2eTotal = o.CO2eFood + o.PickupCO2eSaved
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
