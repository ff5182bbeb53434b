package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

const (
	DefaultHistoryLimit = 20
	activityLimit       = 10
	insightsLimit       = 20
)

type DashboardStats struct {
	TotalQRCodes  int     `json:"totalQRCodes"`
	ActiveQRCodes int     `json:"activeQRCodes"`
	TotalScans    int64   `json:"totalScans"`
	RecentScans   int64   `json:"recentScans"`
	ScanGrowth    string  `json:"scanGrowth"`
	TotalOrders   int64   `json:"totalOrders"`
	TodayOrders   int64   `json:"todayOrders"`
	PendingOrders int64   `json:"pendingOrders"`
	TodayRevenue  float64 `json:"todayRevenue"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// DashboardStats is the landing page summary. Unlike Stats, revenue here
// counts every order that was not cancelled.
func (a *Aggregator) DashboardStats(ctx context.Context, tenantID primitive.ObjectID) (*DashboardStats, error) {
	now := a.now()
	codes, err := a.codes.ListByUser(ctx, tenantID, false)
	if err != nil {
		return nil, apperrors.Internal("Error loading QR codes", err)
	}

	s := &DashboardStats{}
	weekAgo := now.AddDate(0, 0, -7)
	for _, c := range codes {
		if c.IsActive {
			s.ActiveQRCodes++
		}
		s.TotalScans += c.Scans
		if c.LastScannedAt != nil && !c.LastScannedAt.Before(weekAgo) {
			s.RecentScans += c.Scans
		}
	}
	s.TotalQRCodes = s.ActiveQRCodes
	s.ScanGrowth = "0%"
	if s.TotalScans > 0 {
		s.ScanGrowth = fmt.Sprintf("+%d%%", int64(math.Round(float64(s.RecentScans)/float64(s.TotalScans)*100)))
	}

	todayStart := midnight(now)
	if s.TotalOrders, err = a.orders.Count(ctx, store.OrderFilter{UserID: tenantID}); err != nil {
		return nil, apperrors.Internal("Error counting orders", err)
	}
	if s.TodayOrders, err = a.orders.Count(ctx, store.OrderFilter{UserID: tenantID, CreatedFrom: todayStart}); err != nil {
		return nil, apperrors.Internal("Error counting orders", err)
	}
	if s.PendingOrders, err = a.orders.Count(ctx, store.OrderFilter{UserID: tenantID, Status: models.StatusPending}); err != nil {
		return nil, apperrors.Internal("Error counting orders", err)
	}

	billable, err := a.orders.Find(ctx, store.OrderFilter{UserID: tenantID, ExcludeStatus: models.StatusCancelled})
	if err != nil {
		return nil, apperrors.Internal("Error loading orders", err)
	}
	for _, o := range billable {
		s.TotalRevenue += o.TotalAmount
		if !o.CreatedAt.Before(todayStart) {
			s.TodayRevenue += o.TotalAmount
		}
	}
	s.TotalRevenue = round2(s.TotalRevenue)
	s.TodayRevenue = round2(s.TodayRevenue)
	return s, nil
}

type Activity struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Type          string             `json:"type"`
	TableNumber   string             `json:"tableNumber,omitempty"`
	Scans         int64              `json:"scans"`
	LastScannedAt *time.Time         `json:"lastScannedAt,omitempty"`
}

// RecentActivity lists the most recently scanned codes.
func (a *Aggregator) RecentActivity(ctx context.Context, tenantID primitive.ObjectID) ([]Activity, error) {
	codes, err := a.codes.RecentlyScanned(ctx, tenantID, activityLimit)
	if err != nil {
		return nil, apperrors.Internal("Error loading activity", err)
	}
	out := make([]Activity, 0, len(codes))
	for _, c := range codes {
		out = append(out, Activity{
			ID:            c.ID,
			Name:          c.Name,
			Type:          c.Type,
			TableNumber:   c.TableNumber,
			Scans:         c.Scans,
			LastScannedAt: c.LastScannedAt,
		})
	}
	return out, nil
}

type QRSummary struct {
	Total   int             `json:"total"`
	QRCodes []models.QRCode `json:"qrCodes"`
}

func (a *Aggregator) QRSummary(ctx context.Context, tenantID primitive.ObjectID) (*QRSummary, error) {
	codes, err := a.codes.ListByUser(ctx, tenantID, true)
	if err != nil {
		return nil, apperrors.Internal("Error loading QR codes", err)
	}
	if codes == nil {
		codes = []models.QRCode{}
	}
	return &QRSummary{Total: len(codes), QRCodes: codes}, nil
}

type HistoryQuery struct {
	Page   helper.Page
	Status models.OrderStatus
	// Start and End bound createdAt; End is inclusive.
	Start time.Time
	End   time.Time
}

type HistoryEntry struct {
	models.Order
	OrderNumber string `json:"orderNumber"`
}

// OrderHistory pages through a tenant's orders, newest first.
func (a *Aggregator) OrderHistory(ctx context.Context, tenantID primitive.ObjectID, q HistoryQuery) ([]HistoryEntry, helper.Page, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, helper.Page{}, apperrors.Validation("Invalid order status")
	}
	page := q.Page
	if page.Page < 1 {
		page.Page = 1
	}
	if page.RecordPerPage < 1 {
		page.RecordPerPage = DefaultHistoryLimit
	}

	filter := store.OrderFilter{UserID: tenantID, Status: q.Status, CreatedFrom: q.Start}
	if !q.End.IsZero() {
		filter.CreatedTo = q.End.Add(time.Millisecond)
	}
	total, err := a.orders.Count(ctx, filter)
	if err != nil {
		return nil, helper.Page{}, apperrors.Internal("Error counting orders", err)
	}
	filter.Skip = page.Skip()
	filter.Limit = int64(page.RecordPerPage)
	orders, err := a.orders.Find(ctx, filter)
	if err != nil {
		return nil, helper.Page{}, apperrors.Internal("Error loading orders", err)
	}

	out := make([]HistoryEntry, 0, len(orders))
	for _, o := range orders {
		out = append(out, HistoryEntry{Order: o, OrderNumber: o.OrderNumber()})
	}
	return out, page.WithTotal(total), nil
}

type CustomerInsight struct {
	Phone             string    `json:"phone"`
	Name              string    `json:"name"`
	OrderCount        int       `json:"orderCount"`
	TotalSpent        float64   `json:"totalSpent"`
	AverageOrderValue float64   `json:"averageOrderValue"`
	LastOrder         time.Time `json:"lastOrder"`
}

// CustomerInsights ranks customers by lifetime spend, grouped by phone.
// Cancelled orders are included, matching the order history totals.
func (a *Aggregator) CustomerInsights(ctx context.Context, tenantID primitive.ObjectID) ([]CustomerInsight, error) {
	orders, err := a.orders.Find(ctx, store.OrderFilter{UserID: tenantID})
	if err != nil {
		return nil, apperrors.Internal("Error loading orders", err)
	}

	byPhone := map[string]*CustomerInsight{}
	for _, o := range orders {
		c := byPhone[o.CustomerPhone]
		if c == nil {
			c = &CustomerInsight{Phone: o.CustomerPhone}
			byPhone[o.CustomerPhone] = c
		}
		c.OrderCount++
		c.TotalSpent += o.TotalAmount
		if o.CreatedAt.After(c.LastOrder) || c.Name == "" {
			c.LastOrder = o.CreatedAt
			c.Name = o.CustomerName
		}
	}

	out := make([]CustomerInsight, 0, len(byPhone))
	for _, c := range byPhone {
		c.AverageOrderValue = round2(c.TotalSpent / float64(c.OrderCount))
		c.TotalSpent = round2(c.TotalSpent)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSpent != out[j].TotalSpent {
			return out[i].TotalSpent > out[j].TotalSpent
		}
		return out[i].Phone < out[j].Phone
	})
	if len(out) > insightsLimit {
		out = out[:insightsLimit]
	}
	return out, nil
}
