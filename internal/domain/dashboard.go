// internal/domain/dashboard.go
package domain

// KPISummary is the scalar KPI block shown as dashboard tiles. Every figure
// excludes cancelled orders.
type KPISummary struct {
	Orders          int     `json:"orders"`
	GMV             float64 `json:"gmv"`
	Revenue         float64 `json:"revenue"`
	Payout          float64 `json:"payout"`
	AOV             float64 `json:"aov"`
	ItemsSold       int     `json:"items_sold"`
	UniqueItems     int     `json:"unique_items"`
	UniqueVendors   int     `json:"unique_vendors"`
	UniqueOutlets   int     `json:"unique_outlets"`
	UniqueCustomers int     `json:"unique_customers"`
	RepeatRate      float64 `json:"repeat_rate"`
	FoodKg          float64 `json:"food_kg"`
	Meals           float64 `json:"meals"`
	CO2eKg          float64 `json:"co2e_kg"`
	PickupShare     float64 `json:"pickup_share"`
	PickupCO2eKg    float64 `json:"pickup_co2e_kg"`
}

// GroupSummary is one row of a grouped summary table (per brand, outlet,
// item or account manager).
type GroupSummary struct {
	Group      string  `json:"group"`
	Orders     int     `json:"orders"`
	GMV        float64 `json:"gmv"`
	Revenue    float64 `json:"revenue"`
	Payout     float64 `json:"payout"`
	AOV        float64 `json:"aov"`
	PickupRate float64 `json:"pickup_rate"`
	LastDate   string  `json:"last_date"` // YYYY-MM-DD, "" when no dated orders
}

// TimeBucketValue is one of the four fixed time-bucket rows; the value is an
// order count or a GMV sum depending on the requested metric.
type TimeBucketValue struct {
	Bucket string  `json:"time_bucket"`
	Value  float64 `json:"value"`
}

// TopNRow is one row of a top-N ranking.
type TopNRow struct {
	Group   string  `json:"group"`
	Orders  int     `json:"orders"`
	GMV     float64 `json:"gmv"`
	Revenue float64 `json:"revenue"`
	Items   int     `json:"items"`
}

// FunnelStage is one stage of the Browsed -> Pending -> Completed funnel.
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// HeatmapCell is an order count for an (hour, day-of-week) pair. Weekday
// follows time.Weekday: 0 = Sunday.
type HeatmapCell struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
	Orders  int `json:"orders"`
}

// DailyPoint is one point of the per-day GMV/order series.
type DailyPoint struct {
	Date   string  `json:"date"`
	GMV    float64 `json:"gmv"`
	Orders int     `json:"orders"`
}

// DimensionValues lists the distinct values available for each filterable
// dimension, feeding the presentation layer's filter controls.
type DimensionValues struct {
	Brands          []string `json:"brands"`
	Outlets         []string `json:"outlets"`
	Items           []string `json:"items"`
	AccountManagers []string `json:"account_managers"`
	ServiceModes    []string `json:"service_modes"`
	OrderStates     []string `json:"order_states"`
}
