// Package analytics derives dashboard metrics from a tenant's orders and QR
// scan counters. Everything is recomputed on each call.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

const day = 24 * time.Hour

var weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type Aggregator struct {
	orders store.Orders
	codes  store.QRCodes
	now    func() time.Time
}

func NewAggregator(orders store.Orders, codes store.QRCodes) *Aggregator {
	return &Aggregator{orders: orders, codes: codes, now: time.Now}
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Revenue struct {
	Total   float64 `json:"total"`
	Pending float64 `json:"pending"`
	Average float64 `json:"average"`
	Daily   float64 `json:"daily"`
	Today   float64 `json:"today"`
	Growth  float64 `json:"growth"`
}

type OrderCounts struct {
	Total              int                        `json:"total"`
	Completed          int                        `json:"completed"`
	Pending            int                        `json:"pending"`
	Preparing          int                        `json:"preparing"`
	Ready              int                        `json:"ready"`
	Cancelled          int                        `json:"cancelled"`
	Today              int                        `json:"today"`
	Growth             float64                    `json:"growth"`
	StatusDistribution map[models.OrderStatus]int `json:"statusDistribution"`
}

type Customers struct {
	Unique     int     `json:"unique"`
	Repeat     int     `json:"repeat"`
	RepeatRate float64 `json:"repeatRate"`
}

type PopularItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type HourBucket struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type DayBucket struct {
	Day     string  `json:"day"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type TableStat struct {
	Table   string  `json:"table"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type TrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type QRStats struct {
	TotalCodes   int     `json:"totalCodes"`
	TotalScans   int64   `json:"totalScans"`
	AverageScans float64 `json:"averageScans"`
}

type Stats struct {
	Period             string         `json:"period"`
	DateRange          DateRange      `json:"dateRange"`
	Revenue            Revenue        `json:"revenue"`
	Orders             OrderCounts    `json:"orders"`
	Customers          Customers      `json:"customers"`
	PopularItems       []PopularItem  `json:"popularItems"`
	PaymentMethods     map[string]int `json:"paymentMethods"`
	PeakHour           int            `json:"peakHour"`
	HourlyDistribution []HourBucket   `json:"hourlyDistribution"`
	DayOfWeekData      []DayBucket    `json:"dayOfWeekData"`
	TopTables          []TableStat    `json:"topTables"`
	RevenueTrend       []TrendPoint   `json:"revenueTrend"`
	QRStats            QRStats        `json:"qrStats"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PeriodStart maps a period selector to the start of its window. Unknown
// selectors fall back to week.
func PeriodStart(period string, now time.Time) (string, time.Time) {
	switch period {
	case "today":
		return period, midnight(now)
	case "week":
		return period, now.AddDate(0, 0, -7)
	case "month":
		return period, now.AddDate(0, -1, 0)
	case "year":
		return period, now.AddDate(-1, 0, 0)
	case "all":
		return period, time.Unix(0, 0)
	}
	return "week", now.AddDate(0, 0, -7)
}

// Stats computes the metrics for one period. Revenue only counts completed
// orders. Growth compares with the equally long window just before the
// period and is 0 when that window had no revenue.
func (a *Aggregator) Stats(ctx context.Context, tenantID primitive.ObjectID, period string) (*Stats, error) {
	now := a.now()
	period, start := PeriodStart(period, now)

	orders, err := a.orders.Find(ctx, store.OrderFilter{UserID: tenantID, CreatedFrom: start})
	if err != nil {
		return nil, apperrors.Internal("Error loading orders", err)
	}
	prevStart := start.Add(-now.Sub(start))
	previous, err := a.orders.Find(ctx, store.OrderFilter{
		UserID:      tenantID,
		Status:      models.StatusCompleted,
		CreatedFrom: prevStart,
		CreatedTo:   start,
	})
	if err != nil {
		return nil, apperrors.Internal("Error loading orders", err)
	}
	codes, err := a.codes.ListByUser(ctx, tenantID, true)
	if err != nil {
		return nil, apperrors.Internal("Error loading QR codes", err)
	}

	s := &Stats{
		Period:         period,
		DateRange:      DateRange{Start: start, End: now},
		PaymentMethods: map[string]int{},
		Orders: OrderCounts{
			Total:              len(orders),
			StatusDistribution: map[models.OrderStatus]int{},
		},
	}
	for _, st := range models.OrderStatuses {
		s.Orders.StatusDistribution[st] = 0
	}

	todayStart := midnight(now)
	hourly := make([]HourBucket, 24)
	for h := range hourly {
		hourly[h].Hour = h
	}
	weekly := make([]DayBucket, 7)
	for d := range weekly {
		weekly[d].Day = weekdays[d]
	}
	items := map[string]*PopularItem{}
	tables := map[string]*TableStat{}
	customerOrders := map[string]int{}

	var totalRevenue, pendingRevenue, todayRevenue float64
	for _, o := range orders {
		completed := o.Status == models.StatusCompleted
		s.Orders.StatusDistribution[o.Status]++
		switch o.Status {
		case models.StatusCompleted:
			totalRevenue += o.TotalAmount
		case models.StatusPending, models.StatusPreparing, models.StatusReady:
			pendingRevenue += o.TotalAmount
		}
		if !o.CreatedAt.Before(todayStart) {
			s.Orders.Today++
			if completed {
				todayRevenue += o.TotalAmount
			}
		}

		customerOrders[o.CustomerPhone]++
		s.PaymentMethods[o.PaymentMethod]++

		for _, it := range o.Items {
			p := items[it.Name]
			if p == nil {
				p = &PopularItem{Name: it.Name}
				items[it.Name] = p
			}
			p.Quantity += it.Quantity
			p.Revenue += it.Price * float64(it.Quantity)
		}

		local := o.CreatedAt.In(now.Location())
		hourly[local.Hour()].Orders++
		weekly[local.Weekday()].Orders++

		label := o.TableNumber
		if label == "" {
			label = "Unknown"
		}
		ts := tables[label]
		if ts == nil {
			ts = &TableStat{Table: label}
			tables[label] = ts
		}
		ts.Orders++

		if completed {
			hourly[local.Hour()].Revenue += o.TotalAmount
			weekly[local.Weekday()].Revenue += o.TotalAmount
			ts.Revenue += o.TotalAmount
		}
	}

	dist := s.Orders.StatusDistribution
	s.Orders.Completed = dist[models.StatusCompleted]
	s.Orders.Pending = dist[models.StatusPending]
	s.Orders.Preparing = dist[models.StatusPreparing]
	s.Orders.Ready = dist[models.StatusReady]
	s.Orders.Cancelled = dist[models.StatusCancelled]

	var average float64
	if s.Orders.Completed > 0 {
		average = totalRevenue / float64(s.Orders.Completed)
	}
	var daily float64
	if days := math.Ceil(float64(now.Sub(start)) / float64(day)); days > 0 {
		daily = totalRevenue / days
	}

	var previousRevenue float64
	for _, o := range previous {
		previousRevenue += o.TotalAmount
	}
	var revenueGrowth, orderGrowth float64
	if previousRevenue > 0 {
		revenueGrowth = (totalRevenue - previousRevenue) / previousRevenue * 100
	}
	if len(previous) > 0 {
		orderGrowth = float64(s.Orders.Completed-len(previous)) / float64(len(previous)) * 100
	}
	s.Orders.Growth = round2(orderGrowth)

	s.Revenue = Revenue{
		Total:   round2(totalRevenue),
		Pending: round2(pendingRevenue),
		Average: round2(average),
		Daily:   round2(daily),
		Today:   round2(todayRevenue),
		Growth:  round2(revenueGrowth),
	}

	s.Customers.Unique = len(customerOrders)
	for _, n := range customerOrders {
		if n > 1 {
			s.Customers.Repeat++
		}
	}
	if s.Customers.Unique > 0 {
		s.Customers.RepeatRate = math.Round(float64(s.Customers.Repeat) / float64(s.Customers.Unique) * 100)
	}

	s.PopularItems = topItems(items, 10)
	s.HourlyDistribution = hourly
	for h := range hourly {
		if hourly[h].Orders > hourly[s.PeakHour].Orders {
			s.PeakHour = h
		}
	}
	s.DayOfWeekData = weekly
	s.TopTables = topTables(tables, 5)
	s.RevenueTrend = trend(orders, now)
	s.QRStats = qrStats(codes)
	return s, nil
}

func topItems(items map[string]*PopularItem, n int) []PopularItem {
	out := make([]PopularItem, 0, len(items))
	for _, p := range items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topTables(tables map[string]*TableStat, n int) []TableStat {
	out := make([]TableStat, 0, len(tables))
	for _, t := range tables {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Table < out[j].Table
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// trend is completed revenue for each of the last seven local days, oldest
// first, ending today.
func trend(orders []models.Order, now time.Time) []TrendPoint {
	today := midnight(now)
	out := make([]TrendPoint, 7)
	for i := range out {
		from := today.AddDate(0, 0, i-6)
		to := from.AddDate(0, 0, 1)
		p := TrendPoint{Date: from.Format("2006-01-02")}
		for _, o := range orders {
			if o.Status == models.StatusCompleted && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
				p.Revenue += o.TotalAmount
				p.Orders++
			}
		}
		p.Revenue = round2(p.Revenue)
		out[i] = p
	}
	return out
}

func qrStats(codes []models.QRCode) QRStats {
	s := QRStats{TotalCodes: len(codes)}
	for _, c := range codes {
		s.TotalScans += c.Scans
	}
	if s.TotalCodes > 0 {
		s.AverageScans = math.Round(float64(s.TotalScans) / float64(s.TotalCodes))
	}
	return s
}
