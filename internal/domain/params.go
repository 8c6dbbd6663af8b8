// internal/domain/params.go
package domain

// ImpactParams holds the environmental-impact assumptions used by the metric
// deriver. Editable at runtime; changes take effect on the next transform.
type ImpactParams struct {
	AvgOrderWeightKg          float64 `json:"avg_order_weight_kg"`
	KgPerMeal                 float64 `json:"kg_per_meal"`
	CO2ePerKgFoodRescued      float64 `json:"co2e_per_kg_food_rescued"`
	LastMileCO2eDeliveryKg    float64 `json:"last_mile_co2e_delivery_kg"`
	LastMileCO2ePickupKg      float64 `json:"last_mile_co2e_pickup_kg"`
	EnablePickupCO2eComponent bool    `json:"enable_pickup_co2e_component"`
}

// DefaultImpactParams returns the stock assumptions.
func DefaultImpactParams() ImpactParams {
	return ImpactParams{
		AvgOrderWeightKg:          0.40,
		KgPerMeal:                 0.40,
		CO2ePerKgFoodRescued:      2.5,
		LastMileCO2eDeliveryKg:    1.0,
		LastMileCO2ePickupKg:      0.2,
		EnablePickupCO2eComponent: true,
	}
}
