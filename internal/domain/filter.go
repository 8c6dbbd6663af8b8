// internal/domain/filter.go
package domain

import "time"

// Filter narrows the normalized table before aggregation. Slice fields are
// exact-match sets; empty slices match everything. The date range is
// inclusive on both ends.
type Filter struct {
	DateFrom        *time.Time `json:"date_from"`
	DateTo          *time.Time `json:"date_to"`
	ServiceModes    []string   `json:"service_modes"`
	OrderStates     []string   `json:"order_states"`
	Brands          []string   `json:"brands"`
	Outlets         []string   `json:"outlets"`
	Items           []string   `json:"items"`
	AccountManagers []string   `json:"account_managers"`
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil &&
		len(f.ServiceModes) == 0 && len(f.OrderStates) == 0 &&
		len(f.Brands) == 0 && len(f.Outlets) == 0 &&
		len(f.Items) == 0 && len(f.AccountManagers) == 0
}

// Matches reports whether the order passes every populated filter dimension.
func (f Filter) Matches(o *Order) bool {
	if f.DateFrom != nil || f.DateTo != nil {
		if o.Date == nil {
			return false
		}
		if f.DateFrom != nil && o.Date.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && o.Date.After(*f.DateTo) {
			return false
		}
	}
	if !matchSet(f.ServiceModes, o.ServiceMode) {
		return false
	}
	if !matchSet(f.OrderStates, o.OrderState) {
		return false
	}
	if !matchSet(f.Brands, o.Brand) {
		return false
	}
	if !matchSet(f.Outlets, o.StoreName) {
		return false
	}
	if !matchSet(f.Items, o.ItemName) {
		return false
	}
	return matchSet(f.AccountManagers, o.AccountManager)
}

func matchSet(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
