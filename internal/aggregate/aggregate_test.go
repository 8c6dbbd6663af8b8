package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/platable/insights-backend/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

func dptr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// fixture covers two completed orders for one brand (repeat customer), one
// pending order for another, and a cancelled order that aggregates must skip.
func fixture() []domain.Order {
	return []domain.Order{
		{
			OrderNumber: "A1", OrderState: domain.StateCompleted,
			Brand: "Acme", StoreName: "Downtown", ItemName: "Magic Box",
			AccountManager: "Sam", ServiceMode: domain.ServiceModePickup, IsPickup: true,
			OrderValue: fptr(100), Revenue: 12, Payout: fptr(88), Quantity: 2,
			Date: dptr(2026, time.January, 5), Hour: iptr(9), TimeBucket: domain.BucketMorning,
			Customer: "111", FoodKg: 0.4, Meals: 1, CO2eTotal: 1.8, PickupCO2eSaved: 0.8,
		},
		{
			OrderNumber: "A2", OrderState: domain.StateCompleted,
			Brand: "Acme", StoreName: "Downtown", ItemName: "Magic Box",
			AccountManager: "Sam", ServiceMode: "Delivery",
			OrderValue: fptr(50), Revenue: 6, Payout: fptr(44), Quantity: 1,
			Date: dptr(2026, time.January, 6), Hour: iptr(14), TimeBucket: domain.BucketAfternoon,
			Customer: "111", FoodKg: 0.4, Meals: 1, CO2eTotal: 1,
		},
		{
			OrderNumber: "A3", OrderState: domain.StatePending,
			Brand: "Beta", StoreName: "Marina", ItemName: "Surprise Bag",
			AccountManager: "Lee", ServiceMode: "Delivery",
			OrderValue: fptr(30), Revenue: 3, Payout: fptr(27), Quantity: 1,
			Date: dptr(2026, time.January, 6), TimeBucket: domain.BucketOther,
			Customer: "222", FoodKg: 0.4, Meals: 1, CO2eTotal: 1,
		},
		{
			OrderNumber: "A4", OrderState: domain.StateCancelled,
			Brand: "Acme", StoreName: "Downtown", ItemName: "Magic Box",
			AccountManager: "Sam", ServiceMode: "Delivery",
			OrderValue: fptr(999), Revenue: 120, Payout: fptr(879), Quantity: 9,
			Date: dptr(2026, time.January, 7), TimeBucket: domain.BucketOther,
			Customer: "333", FoodKg: 0.4, Meals: 1, CO2eTotal: 1,
		},
	}
}

func TestKPIs(t *testing.T) {
	k := KPIs(fixture(), domain.Filter{})

	if k.Orders != 3 {
		t.Errorf("orders = %d, want 3 (cancelled excluded)", k.Orders)
	}
	if k.GMV != 180 {
		t.Errorf("gmv = %v, want 180", k.GMV)
	}
	if k.Revenue != 21 {
		t.Errorf("revenue = %v, want 21", k.Revenue)
	}
	if k.Payout != 159 {
		t.Errorf("payout = %v, want 159", k.Payout)
	}
	if k.AOV != 60 {
		t.Errorf("aov = %v, want 60", k.AOV)
	}
	if k.ItemsSold != 4 {
		t.Errorf("items sold = %d, want 4", k.ItemsSold)
	}
	if k.UniqueCustomers != 2 {
		t.Errorf("unique customers = %d, want 2", k.UniqueCustomers)
	}
	if k.UniqueVendors != 2 || k.UniqueOutlets != 2 || k.UniqueItems != 2 {
		t.Errorf("uniques = %d/%d/%d, want 2/2/2", k.UniqueVendors, k.UniqueOutlets, k.UniqueItems)
	}
	if k.RepeatRate != 0.5 {
		t.Errorf("repeat rate = %v, want 0.5", k.RepeatRate)
	}
	if want := 1.0 / 3.0; k.PickupShare != want {
		t.Errorf("pickup share = %v, want %v", k.PickupShare, want)
	}
	if k.PickupCO2eKg != 0.8 {
		t.Errorf("pickup co2e = %v, want 0.8", k.PickupCO2eKg)
	}
}

func TestKPIsEmpty(t *testing.T) {
	// Filtering down to cancelled rows yields the zero KPI block: aggregates
	// never count cancelled orders, and the ratios must not divide by zero.
	k := KPIs(fixture(), domain.Filter{OrderStates: []string{domain.StateCancelled}})

	if k.Orders != 0 || k.GMV != 0 || k.AOV != 0 {
		t.Errorf("got %+v, want zero KPIs", k)
	}
	if k.RepeatRate != 0 || k.PickupShare != 0 {
		t.Errorf("ratios = %v/%v, want 0/0", k.RepeatRate, k.PickupShare)
	}
}

func TestKPIsDateFilter(t *testing.T) {
	f := domain.Filter{
		DateFrom: dptr(2026, time.January, 6),
		DateTo:   dptr(2026, time.January, 6),
	}
	k := KPIs(fixture(), f)

	if k.Orders != 2 {
		t.Errorf("orders = %d, want 2 on the boundary day", k.Orders)
	}
	if k.GMV != 80 {
		t.Errorf("gmv = %v, want 80", k.GMV)
	}
}

func TestGroupBy(t *testing.T) {
	rows := GroupBy(fixture(), domain.Filter{}, DimBrand)

	if len(rows) != 2 {
		t.Fatalf("got %d groups, want 2", len(rows))
	}
	acme := rows[0]
	if acme.Group != "Acme" {
		t.Fatalf("first group = %q, want Acme (first appearance)", acme.Group)
	}
	if acme.Orders != 2 || acme.GMV != 150 || acme.Revenue != 18 {
		t.Errorf("acme = %+v, want 2 orders, gmv 150, revenue 18", acme)
	}
	if acme.AOV != 75 {
		t.Errorf("acme aov = %v, want 75", acme.AOV)
	}
	if acme.PickupRate != 0.5 {
		t.Errorf("acme pickup rate = %v, want 0.5", acme.PickupRate)
	}
	if acme.LastDate != "2026-01-06" {
		t.Errorf("acme last date = %q, want 2026-01-06 (cancelled row ignored)", acme.LastDate)
	}
	if rows[1].Group != "Beta" || rows[1].Orders != 1 {
		t.Errorf("second group = %+v, want Beta with 1 order", rows[1])
	}
}

func TestTopN(t *testing.T) {
	rows := TopN(fixture(), domain.Filter{}, DimBrand, MetricGMV, 1)
	if len(rows) != 1 || rows[0].Group != "Acme" || rows[0].GMV != 150 {
		t.Fatalf("top 1 by gmv = %+v, want Acme 150", rows)
	}

	// Stable: repeated calls over unchanged input return identical rows.
	a := TopN(fixture(), domain.Filter{}, DimItem, MetricOrders, 10)
	b := TopN(fixture(), domain.Filter{}, DimItem, MetricOrders, 10)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated TopN differs: %+v vs %+v", a, b)
	}

	if rows := TopN(fixture(), domain.Filter{}, DimBrand, MetricGMV, 0); len(rows) != 2 {
		t.Errorf("n=0 returned %d rows, want all groups", len(rows))
	}
}

func TestTimeBucketValues(t *testing.T) {
	buckets := TimeBucketValues(fixture(), domain.Filter{}, MetricOrders)

	want := []domain.TimeBucketValue{
		{Bucket: domain.BucketMorning, Value: 1},
		{Bucket: domain.BucketAfternoon, Value: 1},
		{Bucket: domain.BucketEvening, Value: 0},
		{Bucket: domain.BucketOther, Value: 1},
	}
	if !reflect.DeepEqual(buckets, want) {
		t.Errorf("buckets = %+v, want %+v", buckets, want)
	}

	gmv := TimeBucketValues(fixture(), domain.Filter{}, MetricGMV)
	if gmv[0].Value != 100 || gmv[3].Value != 30 {
		t.Errorf("gmv buckets = %+v, want morning 100, other 30", gmv)
	}
}

func TestFunnel(t *testing.T) {
	stages := Funnel(fixture(), domain.Filter{})

	want := []domain.FunnelStage{
		{Stage: "Browsed", Count: 3},
		{Stage: "Pending", Count: 1},
		{Stage: "Completed", Count: 2},
	}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("funnel = %+v, want %+v", stages, want)
	}
}

func TestHeatmap(t *testing.T) {
	cells := Heatmap(fixture(), domain.Filter{})

	// Only the two rows with both a date and an hour land on the grid.
	want := []domain.HeatmapCell{
		{Weekday: 1, Hour: 9, Orders: 1},  // Mon 2026-01-05
		{Weekday: 2, Hour: 14, Orders: 1}, // Tue 2026-01-06
	}
	if !reflect.DeepEqual(cells, want) {
		t.Errorf("heatmap = %+v, want %+v", cells, want)
	}
}

func TestDaily(t *testing.T) {
	points := Daily(fixture(), domain.Filter{})

	want := []domain.DailyPoint{
		{Date: "2026-01-05", GMV: 100, Orders: 1},
		{Date: "2026-01-06", GMV: 80, Orders: 2},
	}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("daily = %+v, want %+v", points, want)
	}
}

func TestDetailKeepsCancelled(t *testing.T) {
	rows := Detail(fixture(), domain.Filter{})
	if len(rows) != 4 {
		t.Fatalf("detail returned %d rows, want all 4", len(rows))
	}

	rows = Detail(fixture(), domain.Filter{OrderStates: []string{domain.StateCancelled}})
	if len(rows) != 1 || rows[0].OrderNumber != "A4" {
		t.Errorf("cancelled detail = %+v, want just A4", rows)
	}
}

func TestDimensions(t *testing.T) {
	d := Dimensions(fixture())

	if !reflect.DeepEqual(d.Brands, []string{"Acme", "Beta"}) {
		t.Errorf("brands = %v, want [Acme Beta]", d.Brands)
	}
	if !reflect.DeepEqual(d.ServiceModes, []string{"Delivery", "Pickup"}) {
		t.Errorf("service modes = %v, want [Delivery Pickup]", d.ServiceModes)
	}
	want := []string{domain.StatePending, domain.StateCancelled, domain.StateCompleted}
	if !reflect.DeepEqual(d.OrderStates, want) {
		t.Errorf("order states = %v, want fixed %v", d.OrderStates, want)
	}
}

func TestParseDimension(t *testing.T) {
	for _, valid := range []string{"brand", "outlet", "item", "account_manager"} {
		if _, ok := ParseDimension(valid); !ok {
			t.Errorf("ParseDimension(%q) rejected a valid dimension", valid)
		}
	}
	if _, ok := ParseDimension("customer"); ok {
		t.Error("ParseDimension accepted an unknown dimension")
	}
}
