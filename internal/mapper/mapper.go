// internal/mapper/mapper.go
package mapper

import (
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Canonical field names the pipeline understands. Raw columns are matched
// against the alias lists below; the aliases are used for matching only.
const (
	FieldOrderNumber    = "order_number"
	FieldOrderState     = "order_state"
	FieldOrderValue     = "order_value"
	FieldQuantity       = "purchase_item_quantity"
	FieldServiceMode    = "service_mode"
	FieldDate           = "date"
	FieldTime           = "time"
	FieldItemName       = "item_name"
	FieldStoreName      = "store_name"
	FieldBrand          = "brand"
	FieldCountryCode    = "country_code"
	FieldPhoneNumber    = "phone_number"
	FieldEmail          = "email"
	FieldCommission     = "commission"
	FieldPG             = "pg"
	FieldAccountManager = "account_manager"
	FieldOrderWeightKg  = "order_weight_kg"
)

// AcceptThreshold is the minimum partial-ratio score (0-100) for a raw
// column to be accepted as a canonical field.
const AcceptThreshold = 70

type canonicalField struct {
	name    string
	aliases []string
}

// Ordered so that mapping output is deterministic across runs.
var canon = []canonicalField{
	{FieldOrderNumber, []string{"order number", "order_number", "ordernumber", "id", "order id"}},
	{FieldOrderState, []string{"order state", "order_state", "status", "state"}},
	{FieldOrderValue, []string{"order value", "order_value", "value", "amount", "total"}},
	{FieldQuantity, []string{"purchase item quantity", "quantity", "qty", "items sold"}},
	{FieldServiceMode, []string{"service mode", "service", "mode"}},
	{FieldDate, []string{"date", "order date", "order_date"}},
	{FieldTime, []string{"time", "order time", "order_time"}},
	{FieldItemName, []string{"item name", "item", "product"}},
	{FieldStoreName, []string{"store name", "store", "outlet", "restaurant", "branch"}},
	{FieldBrand, []string{"brand", "vendor", "partner", "merchant"}},
	{FieldCountryCode, []string{"country code", "country_code", "cc"}},
	{FieldPhoneNumber, []string{"phone number", "phone", "mobile", "contact"}},
	{FieldEmail, []string{"email", "e-mail"}},
	{FieldCommission, []string{"commission", "comission", "commission%", "comission%", "commission %"}},
	{FieldPG, []string{"pg", "pg%", "payment gateway", "payment gateway%", "pg %"}},
	{FieldAccountManager, []string{"account manager", "acc manager", "am"}},
	{FieldOrderWeightKg, []string{"order weight kg", "order_weight_kg", "order weight", "weight (kg)"}},
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeHeader canonicalizes a raw column name for matching: trimmed,
// lower-cased, internal whitespace collapsed to single spaces.
func NormalizeHeader(h string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
}

// Mapping maps canonical field names to the index of the winning raw column.
// Canonical fields with no column scoring at or above the threshold are
// absent; downstream code treats those fields as all-null.
type Mapping map[string]int

// Has reports whether the canonical field mapped to a column.
func (m Mapping) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// MapHeaders matches raw column names against the canonical alias table
// with the default acceptance threshold.
func MapHeaders(headers []string) Mapping {
	return MapHeadersWithThreshold(headers, AcceptThreshold)
}

// MapHeadersWithThreshold is MapHeaders with an explicit threshold. For each
// canonical field the score of a raw column is its best partial-ratio over
// the field's aliases; the first column reaching the overall best score
// wins (stable by column order).
func MapHeadersWithThreshold(headers []string, threshold int) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	mapping := make(Mapping)
	for _, field := range canon {
		bestIdx, bestScore := -1, 0
		for i, col := range normalized {
			if col == "" {
				continue
			}
			score := 0
			for _, alias := range field.aliases {
				if s := fuzzy.PartialRatio(col, alias); s > score {
					score = s
				}
			}
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx >= 0 && bestScore >= threshold {
			mapping[field.name] = bestIdx
		}
	}
	return mapping
}

// CanonicalFields returns the canonical field names in their stable order.
func CanonicalFields() []string {
	out := make([]string, len(canon))
	for i, f := range canon {
		out[i] = f.name
	}
	return out
}
