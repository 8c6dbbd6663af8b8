// internal/aggregate/aggregate.go
//
// Read-only aggregations over the normalized order table. Every KPI and
// grouped aggregate excludes cancelled orders; only the detail view keeps
// them so they stay inspectable.
package aggregate

import (
	"math"
	"sort"

	"github.com/platable/insights-backend/internal/domain"
)

// Dimension selects the grouping column for summaries and rankings.
type Dimension string

const (
	DimBrand          Dimension = "brand"
	DimOutlet         Dimension = "outlet"
	DimItem           Dimension = "item"
	DimAccountManager Dimension = "account_manager"
)

// ParseDimension validates a dimension name from the API surface.
func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(s) {
	case DimBrand, DimOutlet, DimItem, DimAccountManager:
		return Dimension(s), true
	default:
		return "", false
	}
}

func (d Dimension) key(o *domain.Order) string {
	switch d {
	case DimBrand:
		return o.Brand
	case DimOutlet:
		return o.StoreName
	case DimItem:
		return o.ItemName
	case DimAccountManager:
		return o.AccountManager
	default:
		return ""
	}
}

// Metric names accepted by TopN and TimeBucketValues.
const (
	MetricOrders  = "orders"
	MetricGMV     = "gmv"
	MetricRevenue = "revenue"
	MetricItems   = "items"
)

// Detail returns the rows matching the filter, cancelled orders included.
// The input slice is never mutated.
func Detail(orders []domain.Order, f domain.Filter) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for i := range orders {
		if f.Matches(&orders[i]) {
			out = append(out, orders[i])
		}
	}
	return out
}

// active returns the filtered rows with cancelled orders dropped, the
// population every aggregate below works on.
func active(orders []domain.Order, f domain.Filter) []*domain.Order {
	out := make([]*domain.Order, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		if o.OrderState == domain.StateCancelled {
			continue
		}
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// KPIs computes the scalar KPI block over the filtered, non-cancelled rows.
func KPIs(orders []domain.Order, f domain.Filter) domain.KPISummary {
	rows := active(orders, f)

	var k domain.KPISummary
	k.Orders = len(rows)

	items := make(map[string]struct{})
	vendors := make(map[string]struct{})
	outlets := make(map[string]struct{})
	customerOrders := make(map[string]map[string]struct{})
	pickups := 0

	for _, o := range rows {
		if o.OrderValue != nil {
			k.GMV += *o.OrderValue
		}
		k.Revenue += o.Revenue
		if o.Payout != nil {
			k.Payout += *o.Payout
		}
		k.ItemsSold += o.Quantity
		k.FoodKg += o.FoodKg
		k.Meals += o.Meals
		k.CO2eKg += o.CO2eTotal
		k.PickupCO2eKg += o.PickupCO2eSaved
		if o.IsPickup {
			pickups++
		}
		addNonEmpty(items, o.ItemName)
		addNonEmpty(vendors, o.Brand)
		addNonEmpty(outlets, o.StoreName)
		if o.Customer != "" {
			set, ok := customerOrders[o.Customer]
			if !ok {
				set = make(map[string]struct{})
				customerOrders[o.Customer] = set
			}
			if o.OrderNumber != "" {
				set[o.OrderNumber] = struct{}{}
			}
		}
	}

	k.GMV = round2(k.GMV)
	k.Revenue = round2(k.Revenue)
	k.Payout = round2(k.Payout)
	k.UniqueItems = len(items)
	k.UniqueVendors = len(vendors)
	k.UniqueOutlets = len(outlets)
	k.UniqueCustomers = len(customerOrders)

	if k.Orders > 0 {
		k.AOV = round2(k.GMV / float64(k.Orders))
		k.PickupShare = float64(pickups) / float64(k.Orders)
	}
	if len(customerOrders) > 0 {
		repeat := 0
		for _, set := range customerOrders {
			if len(set) >= 2 {
				repeat++
			}
		}
		k.RepeatRate = float64(repeat) / float64(len(customerOrders))
	}

	return k
}

type groupAccum struct {
	orders   int
	gmv      float64
	gmvCount int
	revenue  float64
	payout   float64
	items    int
	pickups  int
	lastDate string
}

// GroupBy produces one summary row per distinct value of the dimension.
// Rows with an empty dimension value are skipped; groups appear in
// first-appearance order before any consumer-side sorting.
func GroupBy(orders []domain.Order, f domain.Filter, dim Dimension) []domain.GroupSummary {
	keys, accums := accumulate(orders, f, dim)

	out := make([]domain.GroupSummary, 0, len(keys))
	for _, key := range keys {
		a := accums[key]
		g := domain.GroupSummary{
			Group:    key,
			Orders:   a.orders,
			GMV:      round2(a.gmv),
			Revenue:  round2(a.revenue),
			Payout:   round2(a.payout),
			LastDate: a.lastDate,
		}
		if a.gmvCount > 0 {
			g.AOV = round2(a.gmv / float64(a.gmvCount))
		}
		if a.orders > 0 {
			g.PickupRate = float64(a.pickups) / float64(a.orders)
		}
		out = append(out, g)
	}
	return out
}

// TopN ranks groups by the requested metric, descending. The sort is stable,
// so equal-metric groups keep their first-appearance order and repeated
// calls over unchanged input return identical rows.
func TopN(orders []domain.Order, f domain.Filter, dim Dimension, by string, n int) []domain.TopNRow {
	keys, accums := accumulate(orders, f, dim)

	rows := make([]domain.TopNRow, 0, len(keys))
	for _, key := range keys {
		a := accums[key]
		rows = append(rows, domain.TopNRow{
			Group:   key,
			Orders:  a.orders,
			GMV:     round2(a.gmv),
			Revenue: round2(a.revenue),
			Items:   a.items,
		})
	}

	metric := func(r domain.TopNRow) float64 {
		switch by {
		case MetricGMV:
			return r.GMV
		case MetricRevenue:
			return r.Revenue
		case MetricItems:
			return float64(r.Items)
		default:
			return float64(r.Orders)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return metric(rows[i]) > metric(rows[j])
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func accumulate(orders []domain.Order, f domain.Filter, dim Dimension) ([]string, map[string]*groupAccum) {
	var keys []string
	accums := make(map[string]*groupAccum)

	for _, o := range active(orders, f) {
		key := dim.key(o)
		if key == "" {
			continue
		}
		a, ok := accums[key]
		if !ok {
			a = &groupAccum{}
			accums[key] = a
			keys = append(keys, key)
		}
		a.orders++
		if o.OrderValue != nil {
			a.gmv += *o.OrderValue
			a.gmvCount++
		}
		a.revenue += o.Revenue
		if o.Payout != nil {
			a.payout += *o.Payout
		}
		a.items += o.Quantity
		if o.IsPickup {
			a.pickups++
		}
		if o.Date != nil {
			if d := o.Date.Format("2006-01-02"); d > a.lastDate {
				a.lastDate = d
			}
		}
	}
	return keys, accums
}

// TimeBucketValues aggregates order counts (or GMV) by time bucket. The
// output always contains all four buckets in their fixed order, with zeros
// for buckets no order fell into.
func TimeBucketValues(orders []domain.Order, f domain.Filter, metric string) []domain.TimeBucketValue {
	totals := make(map[string]float64, len(domain.TimeBuckets))
	for _, o := range active(orders, f) {
		if metric == MetricGMV {
			if o.OrderValue != nil {
				totals[o.TimeBucket] += *o.OrderValue
			}
		} else {
			totals[o.TimeBucket]++
		}
	}

	out := make([]domain.TimeBucketValue, 0, len(domain.TimeBuckets))
	for _, bucket := range domain.TimeBuckets {
		out = append(out, domain.TimeBucketValue{Bucket: bucket, Value: round2(totals[bucket])})
	}
	return out
}

// Funnel counts the Browsed -> Pending -> Completed stages, where Browsed
// is the union of the latter two.
func Funnel(orders []domain.Order, f domain.Filter) []domain.FunnelStage {
	pending, completed := 0, 0
	for i := range orders {
		o := &orders[i]
		if !f.Matches(o) {
			continue
		}
		switch o.OrderState {
		case domain.StatePending:
			pending++
		case domain.StateCompleted:
			completed++
		}
	}
	return []domain.FunnelStage{
		{Stage: "Browsed", Count: pending + completed},
		{Stage: "Pending", Count: pending},
		{Stage: "Completed", Count: completed},
	}
}

// Heatmap counts orders per (weekday, hour) cell. Rows without a parsed
// date or hour are omitted from this view only.
func Heatmap(orders []domain.Order, f domain.Filter) []domain.HeatmapCell {
	counts := make(map[[2]int]int)
	for _, o := range active(orders, f) {
		if o.Date == nil || o.Hour == nil {
			continue
		}
		counts[[2]int{int(o.Date.Weekday()), *o.Hour}]++
	}

	cells := make([]domain.HeatmapCell, 0, len(counts))
	for key, n := range counts {
		cells = append(cells, domain.HeatmapCell{Weekday: key[0], Hour: key[1], Orders: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Weekday != cells[j].Weekday {
			return cells[i].Weekday < cells[j].Weekday
		}
		return cells[i].Hour < cells[j].Hour
	})
	return cells
}

// Daily produces the per-day GMV and order-count series, sorted by date.
func Daily(orders []domain.Order, f domain.Filter) []domain.DailyPoint {
	type accum struct {
		gmv    float64
		orders int
	}
	totals := make(map[string]*accum)
	for _, o := range active(orders, f) {
		if o.Date == nil {
			continue
		}
		d := o.Date.Format("2006-01-02")
		a, ok := totals[d]
		if !ok {
			a = &accum{}
			totals[d] = a
		}
		a.orders++
		if o.OrderValue != nil {
			a.gmv += *o.OrderValue
		}
	}

	out := make([]domain.DailyPoint, 0, len(totals))
	for d, a := range totals {
		out = append(out, domain.DailyPoint{Date: d, GMV: round2(a.gmv), Orders: a.orders})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Dimensions lists the distinct filterable values in the full table
// (cancelled included, so filter controls can select them).
func Dimensions(orders []domain.Order) domain.DimensionValues {
	brands := make(map[string]struct{})
	outlets := make(map[string]struct{})
	items := make(map[string]struct{})
	managers := make(map[string]struct{})
	modes := make(map[string]struct{})
	for i := range orders {
		o := &orders[i]
		addNonEmpty(brands, o.Brand)
		addNonEmpty(outlets, o.StoreName)
		addNonEmpty(items, o.ItemName)
		addNonEmpty(managers, o.AccountManager)
		addNonEmpty(modes, o.ServiceMode)
	}
	return domain.DimensionValues{
		Brands:          sortedKeys(brands),
		Outlets:         sortedKeys(outlets),
		Items:           sortedKeys(items),
		AccountManagers: sortedKeys(managers),
		ServiceModes:    sortedKeys(modes),
		OrderStates:     []string{domain.StatePending, domain.StateCancelled, domain.StateCompleted},
	}
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
