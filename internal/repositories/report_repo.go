package repositories

import (
	"context"
	"time"

	"capristore/internal/models"
)

// ReportRepository defines the interface for the backend's sales reports.
// start and end are calendar days; both are inclusive.
type ReportRepository interface {
	Orders(ctx context.Context, start, end time.Time) ([]models.ReportOrder, error)
	Statistics(ctx context.Context, start, end time.Time) (*models.ReportStats, error)
	SalesByProduct(ctx context.Context, start, end time.Time) ([]models.ProductSales, error)
	SalesByCategory(ctx context.Context, start, end time.Time) (*models.SalesByCategory, error)
	SalesByMonth(ctx context.Context, start, end time.Time) ([]models.MonthlySales, error)
	TopCustomers(ctx context.Context, start, end time.Time, limit int) ([]models.CustomerSales, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}
