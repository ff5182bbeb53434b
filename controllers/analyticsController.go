package controller

import (
	"net/http"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/analytics"
	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

func (c *Controller) AnalyticsStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "analytics_stats", err)
		return
	}
	stats, err := c.Analytics.Stats(ctx, tenantID, r.URL.Query().Get("period"))
	if err != nil {
		c.fail(w, r, "analytics_stats", err)
		return
	}
	helper.Success(w, http.StatusOK, "", stats)
}

func (c *Controller) OrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "order_history", err)
		return
	}
	q := r.URL.Query()
	query := analytics.HistoryQuery{
		Page:   helper.PageFromQuery(q, analytics.DefaultHistoryLimit),
		Status: models.OrderStatus(q.Get("status")),
	}
	if query.Status == "all" {
		query.Status = ""
	}
	if query.Start, err = parseDate(q.Get("startDate"), "startDate"); err != nil {
		c.fail(w, r, "order_history", err)
		return
	}
	if query.End, err = parseDate(q.Get("endDate"), "endDate"); err != nil {
		c.fail(w, r, "order_history", err)
		return
	}

	entries, page, err := c.Analytics.OrderHistory(ctx, tenantID, query)
	if err != nil {
		c.fail(w, r, "order_history", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"orders": entries, "pagination": page})
}

func (c *Controller) CustomerInsights(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "customer_insights", err)
		return
	}
	customers, err := c.Analytics.CustomerInsights(ctx, tenantID)
	if err != nil {
		c.fail(w, r, "customer_insights", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"customers": customers})
}

func (c *Controller) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "dashboard_stats", err)
		return
	}
	stats, err := c.Analytics.DashboardStats(ctx, tenantID)
	if err != nil {
		c.fail(w, r, "dashboard_stats", err)
		return
	}
	helper.Success(w, http.StatusOK, "", stats)
}

func (c *Controller) DashboardActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "dashboard_activity", err)
		return
	}
	activity, err := c.Analytics.RecentActivity(ctx, tenantID)
	if err != nil {
		c.fail(w, r, "dashboard_activity", err)
		return
	}
	helper.Success(w, http.StatusOK, "", activity)
}

func (c *Controller) QRSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "qr_summary", err)
		return
	}
	summary, err := c.Analytics.QRSummary(ctx, tenantID)
	if err != nil {
		c.fail(w, r, "qr_summary", err)
		return
	}
	helper.Success(w, http.StatusOK, "", summary)
}

// parseDate accepts RFC 3339 or a bare YYYY-MM-DD in local time.
func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.KindValidation, "Invalid "+field, err)
	}
	return t, nil
}
