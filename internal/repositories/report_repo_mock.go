package repositories

import (
	"context"
	"sync"
	"time"

	"capristore/internal/models"
)

// MockReportRepository serves fixed report data. Reports are computed by the
// backend, so the in-memory variant only returns what it was given and
// records the last period it was asked for.
type MockReportRepository struct {
	ReportOrders  []models.ReportOrder
	Stats         models.ReportStats
	ProductSales  []models.ProductSales
	CategorySales models.SalesByCategory
	MonthlySales  []models.MonthlySales
	Customers     []models.CustomerSales
	Dashboard     models.DashboardStats
	LastStart     time.Time
	LastEnd       time.Time
	LastLimit     int
	mu            sync.Mutex
}

// NewMockReportRepository creates a new instance of MockReportRepository.
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

func (r *MockReportRepository) record(start, end time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastStart, r.LastEnd = start, end
}

// Orders returns the configured order rows.
func (r *MockReportRepository) Orders(_ context.Context, start, end time.Time) ([]models.ReportOrder, error) {
	r.record(start, end)
	return r.ReportOrders, nil
}

// Statistics returns the configured statistics with the requested period.
func (r *MockReportRepository) Statistics(_ context.Context, start, end time.Time) (*models.ReportStats, error) {
	r.record(start, end)
	stats := r.Stats
	stats.PeriodStart = start.Format(DateLayout)
	stats.PeriodEnd = end.Format(DateLayout)
	return &stats, nil
}

// SalesByProduct returns the configured product sales.
func (r *MockReportRepository) SalesByProduct(_ context.Context, start, end time.Time) ([]models.ProductSales, error) {
	r.record(start, end)
	return r.ProductSales, nil
}

// SalesByCategory returns the configured category sales.
func (r *MockReportRepository) SalesByCategory(_ context.Context, start, end time.Time) (*models.SalesByCategory, error) {
	r.record(start, end)
	sales := r.CategorySales
	return &sales, nil
}

// SalesByMonth returns the configured monthly sales.
func (r *MockReportRepository) SalesByMonth(_ context.Context, start, end time.Time) ([]models.MonthlySales, error) {
	r.record(start, end)
	return r.MonthlySales, nil
}

// TopCustomers returns at most limit configured customers.
func (r *MockReportRepository) TopCustomers(_ context.Context, start, end time.Time, limit int) ([]models.CustomerSales, error) {
	r.record(start, end)
	r.mu.Lock()
	r.LastLimit = limit
	r.mu.Unlock()
	if limit < len(r.Customers) {
		return r.Customers[:limit], nil
	}
	return r.Customers, nil
}

// DashboardStats returns the configured dashboard counters.
func (r *MockReportRepository) DashboardStats(_ context.Context) (*models.DashboardStats, error) {
	stats := r.Dashboard
	return &stats, nil
}
