// internal/domain/order.go
package domain

import "time"

// Order states after normalization. Anything that is not recognizably
// pending or cancelled is treated as completed.
const (
	StatePending   = "Pending"
	StateCancelled = "Cancelled"
	StateCompleted = "Completed"
)

// Time-of-day buckets. Aggregate outputs always contain all four, in this order.
const (
	BucketMorning   = "Morning"
	BucketAfternoon = "Afternoon"
	BucketEvening   = "Evening"
	BucketOther     = "Other"
)

// TimeBuckets is the fixed, ordered category set for bucket aggregates.
var TimeBuckets = []string{BucketMorning, BucketAfternoon, BucketEvening, BucketOther}

// ServiceModePickup is the canonical pickup service mode after title-casing.
const ServiceModePickup = "Pickup"

// Order is one normalized row of the uploaded sheet. String fields hold ""
// and pointer fields hold nil when the source value was missing or did not
// parse; aggregates treat those as absent, never as zero.
type Order struct {
	OrderNumber    string `json:"order_number"`
	OrderState     string `json:"order_state"`
	ServiceMode    string `json:"service_mode"`
	Brand          string `json:"brand"`
	StoreName      string `json:"store_name"`
	ItemName       string `json:"item_name"`
	AccountManager string `json:"account_manager"`

	OrderValue *float64   `json:"order_value"`
	Quantity   int        `json:"quantity"`
	Date       *time.Time `json:"date"`
	Hour       *int       `json:"hour"`
	TimeBucket string     `json:"time_bucket"`

	// Customer identity: digits-only country code + phone with leading
	// zeros stripped, falling back to email, else "".
	Customer string `json:"customer"`

	CommissionRate   *float64 `json:"commission_rate"`
	PGRate           *float64 `json:"pg_rate"`
	CommissionAmount *float64 `json:"commission_amount"`
	PGAmount         *float64 `json:"pg_amount"`
	Revenue          float64  `json:"revenue"`
	Payout           *float64 `json:"payout"`

	FoodKg          float64 `json:"food_kg"`
	Meals           float64 `json:"meals"`
	CO2eFood        float64 `json:"co2e_food_kg"`
	PickupCO2eSaved float64 `json:"pickup_co2e_saved_kg"`
	CO2eTotal       float64 `json:"co2e_total_kg"`
	IsPickup        bool    `json:"is_pickup"`
}

// BucketForHour maps an hour of day onto the four-way time bucket partition.
// A nil hour (time failed to parse) lands in the Other bucket.
func BucketForHour(hour *int) string {
	if hour == nil {
		return BucketOther
	}
	h := *hour
	switch {
	case h >= 6 && h < 12:
		return BucketMorning
	case h >= 12 && h < 18:
		return BucketAfternoon
	case h >= 18 && h < 24:
		return BucketEvening
	default:
		return BucketOther
	}
}
