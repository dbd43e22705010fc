// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// AccessCollection holds one access counter document per user
const AccessCollection = "userAccess"

// chartDayLayout labels chart buckets
const chartDayLayout = "2006-01-02"

// Service computes the admin dashboard aggregates by scanning the store
type Service struct {
	store    docstore.Store
	orders   *order.Service
	logger   *logrus.Logger
	location *time.Location
}

// NewService creates a new analytics service
func NewService(store docstore.Store, orders *order.Service, logger *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		orders:   orders,
		logger:   logger,
		location: cfg.Location(),
	}
}

// ChartData is revenue per calendar day, oldest first. Amounts and Labels are parallel.
type ChartData struct {
	Amounts []money.Amount `json:"amounts"`
	Labels  []string       `json:"labels"`
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	TotalRevenue    money.Amount  `json:"total_revenue"`
	TotalProfit     *money.Amount `json:"total_profit"`
	TotalOrders     int64         `json:"total_orders"`
	UserAccessCount int64         `json:"user_access_count"`
	TotalViews      int64         `json:"total_views"`
	Chart           ChartData     `json:"chart"`
	RecentOrders    []order.Order `json:"recent_orders"`
}

func (s *Service) scanOrders(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	docs, err := s.store.Query(ctx, order.Collection, q)
	if err != nil {
		s.logger.WithError(err).Error("Failed to scan orders")
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return docs, nil
}

// orderAmount reads totalAmount; a missing or invalid value counts as 0
func (s *Service) orderAmount(doc docstore.Document) money.Amount {
	amount, err := money.Decode(docstore.NewDecoder(order.Collection, doc), "totalAmount")
	if err != nil {
		s.logger.WithError(err).WithField("id", doc.ID).Debug("Order has no usable total amount")
		return 0
	}
	return amount
}

// TotalRevenue sums totalAmount over every order
func (s *Service) TotalRevenue(ctx context.Context) (money.Amount, error) {
	docs, err := s.scanOrders(ctx, docstore.Query{})
	if err != nil {
		return 0, err
	}

	var total money.Amount
	for _, doc := range docs {
		total += s.orderAmount(doc)
	}
	return total, nil
}

// TotalProfit sums profit over the orders that carry it. It is nil when none do.
func (s *Service) TotalProfit(ctx context.Context) (*money.Amount, error) {
	docs, err := s.scanOrders(ctx, docstore.Query{})
	if err != nil {
		return nil, err
	}

	var (
		total money.Amount
		seen  bool
	)
	for _, doc := range docs {
		profit, present, err := money.DecodeOptional(docstore.NewDecoder(order.Collection, doc), "profit")
		if err != nil {
			s.logger.WithError(err).WithField("id", doc.ID).Warn("Order has an invalid profit")
			continue
		}
		if present {
			total += profit
			seen = true
		}
	}
	if !seen {
		return nil, nil
	}
	return &total, nil
}

// TotalOrders counts order documents
func (s *Service) TotalOrders(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx, order.Collection, docstore.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

// UserAccessCount is the number of users that have opened the app
func (s *Service) UserAccessCount(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx, AccessCollection, docstore.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count user access: %w", err)
	}
	return n, nil
}

// TotalViews sums accessCount across users
func (s *Service) TotalViews(ctx context.Context) (int64, error) {
	docs, err := s.store.Query(ctx, AccessCollection, docstore.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve user access: %w", err)
	}

	var total int64
	for _, doc := range docs {
		n, err := docstore.NewDecoder(AccessCollection, doc).OptInt64("accessCount")
		if err != nil {
			s.logger.WithError(err).WithField("id", doc.ID).Warn("Invalid access counter")
			continue
		}
		total += n
	}
	return total, nil
}

// ChartData groups order totals by calendar day in the configured location
func (s *Service) ChartData(ctx context.Context) (ChartData, error) {
	docs, err := s.scanOrders(ctx, docstore.Query{OrderBy: "orderDate", Dir: docstore.Asc})
	if err != nil {
		return ChartData{}, err
	}

	chart := ChartData{Amounts: []money.Amount{}, Labels: []string{}}
	index := make(map[string]int)
	for _, doc := range docs {
		date, err := docstore.NewDecoder(order.Collection, doc).Time("orderDate")
		if err != nil {
			s.logger.WithError(err).WithField("id", doc.ID).Warn("Order without a date left out of chart")
			continue
		}

		label := date.In(s.location).Format(chartDayLayout)
		i, ok := index[label]
		if !ok {
			i = len(chart.Labels)
			index[label] = i
			chart.Labels = append(chart.Labels, label)
			chart.Amounts = append(chart.Amounts, 0)
		}
		chart.Amounts[i] += s.orderAmount(doc)
	}
	return chart, nil
}

// Dashboard gathers every aggregate plus the most recent orders
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)

	if stats.TotalRevenue, err = s.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProfit, err = s.TotalProfit(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.TotalOrders(ctx); err != nil {
		return nil, err
	}
	if stats.UserAccessCount, err = s.UserAccessCount(ctx); err != nil {
		return nil, err
	}
	if stats.TotalViews, err = s.TotalViews(ctx); err != nil {
		return nil, err
	}
	if stats.Chart, err = s.ChartData(ctx); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = s.orders.Recent(ctx, order.DefaultRecentLimit); err != nil {
		return nil, err
	}
	return &stats, nil
}
