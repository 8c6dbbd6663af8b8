// internal/api/handlers/dashboard_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/platable/insights-backend/internal/aggregate"
	"github.com/platable/insights-backend/internal/cache"
	"github.com/platable/insights-backend/internal/domain"
	"github.com/platable/insights-backend/internal/session"
)

type DashboardHandler struct {
	store       *session.Store
	cache       cache.KPICache
	defaultTopN int
	maskPII     bool
}

func NewDashboardHandler(store *session.Store, kpiCache cache.KPICache, defaultTopN int, maskPII bool) *DashboardHandler {
	if defaultTopN <= 0 {
		defaultTopN = 10
	}
	return &DashboardHandler{
		store:       store,
		cache:       kpiCache,
		defaultTopN: defaultTopN,
		maskPII:     maskPII,
	}
}

// parseFilter reads the filter query parameters shared by every dashboard
// and detail endpoint. List parameters accept comma-separated values.
func (h *DashboardHandler) parseFilter(c *gin.Context) domain.Filter {
	filter := domain.Filter{
		ServiceModes:    parseCommaList(c.Query("service_mode")),
		OrderStates:     parseCommaList(c.Query("order_state")),
		Brands:          parseCommaList(c.Query("brand")),
		Outlets:         parseCommaList(c.Query("outlet")),
		Items:           parseCommaList(c.Query("item")),
		AccountManagers: parseCommaList(c.Query("account_manager")),
	}

	if from := strings.TrimSpace(c.Query("date_from")); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &t
		}
	}
	if to := strings.TrimSpace(c.Query("date_to")); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &t
		}
	}

	return filter
}

func parseCommaList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// snapshot fetches the session dataset, answering 404 before any upload.
func (h *DashboardHandler) snapshot(c *gin.Context) (session.Snapshot, bool) {
	snap, err := h.store.Snapshot()
	if err != nil {
		if errors.Is(err, session.ErrNoDataset) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no dataset loaded, upload a sheet first"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read dataset"})
		}
		return session.Snapshot{}, false
	}
	return snap, true
}

// GetKPIs returns the scalar KPI block for the current filter.
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	filter := h.parseFilter(c)

	ctx := c.Request.Context()
	if cached, hit, err := h.cache.Get(ctx, snap.Revision, filter); err != nil {
		log.Warn().Err(err).Msg("kpi cache read failed")
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	kpis := aggregate.KPIs(snap.Orders, filter)
	if err := h.cache.Set(ctx, snap.Revision, filter, &kpis); err != nil {
		log.Warn().Err(err).Msg("kpi cache write failed")
	}
	c.JSON(http.StatusOK, kpis)
}

// GetSummary returns the grouped summary table for ?group=.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	dim, ok := aggregate.ParseDimension(c.DefaultQuery("group", string(aggregate.DimBrand)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group dimension"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": dim,
		"rows":  aggregate.GroupBy(snap.Orders, h.parseFilter(c), dim),
	})
}

// GetTimeBuckets returns the fixed four-bucket aggregate; ?value=orders|gmv.
func (h *DashboardHandler) GetTimeBuckets(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	metric := c.DefaultQuery("value", aggregate.MetricOrders)
	if metric != aggregate.MetricOrders && metric != aggregate.MetricGMV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be orders or gmv"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"value":   metric,
		"buckets": aggregate.TimeBucketValues(snap.Orders, h.parseFilter(c), metric),
	})
}

// GetTopN returns the top-N groups by ?by= metric for ?group=.
func (h *DashboardHandler) GetTopN(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	dim, ok := aggregate.ParseDimension(c.DefaultQuery("group", string(aggregate.DimBrand)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group dimension"})
		return
	}

	by := c.DefaultQuery("by", aggregate.MetricGMV)
	switch by {
	case aggregate.MetricOrders, aggregate.MetricGMV, aggregate.MetricRevenue, aggregate.MetricItems:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ranking metric"})
		return
	}

	n := h.defaultTopN
	if v, err := strconv.Atoi(c.DefaultQuery("n", "")); err == nil && v > 0 {
		n = v
	}

	c.JSON(http.StatusOK, gin.H{
		"group": dim,
		"by":    by,
		"rows":  aggregate.TopN(snap.Orders, h.parseFilter(c), dim, by, n),
	})
}

// GetFunnel returns the Browsed -> Pending -> Completed funnel counts.
func (h *DashboardHandler) GetFunnel(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": aggregate.Funnel(snap.Orders, h.parseFilter(c))})
}

// GetHeatmap returns order counts per (weekday, hour) cell.
func (h *DashboardHandler) GetHeatmap(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cells": aggregate.Heatmap(snap.Orders, h.parseFilter(c))})
}

// GetDaily returns the per-day GMV/order series.
func (h *DashboardHandler) GetDaily(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": aggregate.Daily(snap.Orders, h.parseFilter(c))})
}

// GetOrders returns the filtered detail rows. Cancelled orders are retained
// here so they stay inspectable; only aggregates exclude them.
func (h *DashboardHandler) GetOrders(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	rows := aggregate.Detail(snap.Orders, h.parseFilter(c))
	if h.maskPII {
		for i := range rows {
			rows[i].Customer = maskCustomer(rows[i].Customer)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": rows,
		"total":  len(rows),
	})
}

// GetDimensions returns the distinct values available per filter dimension.
func (h *DashboardHandler) GetDimensions(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, aggregate.Dimensions(snap.Orders))
}

// maskCustomer hides all but the tail of a customer identity so grids can
// distinguish customers without exposing full phone numbers or emails.
func maskCustomer(customer string) string {
	if customer == "" {
		return ""
	}
	const visible = 4
	if len(customer) <= visible {
		return strings.Repeat("*", len(customer))
	}
	return strings.Repeat("*", len(customer)-visible) + customer[len(customer)-visible:]
}
