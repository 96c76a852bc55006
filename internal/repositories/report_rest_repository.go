package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"capristore/internal/backend"
	"capristore/internal/models"
)

// DateLayout is the day format the report endpoints expect.
const DateLayout = "2006-01-02"

// RESTReportRepository reads reports from the shop backend.
type RESTReportRepository struct {
	client *backend.Client
}

// NewRESTReportRepository creates a new instance of RESTReportRepository.
func NewRESTReportRepository(client *backend.Client) *RESTReportRepository {
	return &RESTReportRepository{client: client}
}

func (r *RESTReportRepository) get(ctx context.Context, report string, query url.Values, out any) error {
	if err := r.client.Do(ctx, http.MethodGet, "/api/reports/"+report, query, nil, out); err != nil {
		return fmt.Errorf("failed to get %s report: %w", report, mapError(err))
	}
	return nil
}

// Orders returns the non-cancelled orders of the period.
func (r *RESTReportRepository) Orders(ctx context.Context, start, end time.Time) ([]models.ReportOrder, error) {
	var rows []models.ReportOrder
	if err := r.get(ctx, "orders", rangeQuery(start, end), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Statistics returns the headline figures of the period.
func (r *RESTReportRepository) Statistics(ctx context.Context, start, end time.Time) (*models.ReportStats, error) {
	var stats models.ReportStats
	if err := r.get(ctx, "statistics", rangeQuery(start, end), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SalesByProduct returns delivered sales grouped by product.
func (r *RESTReportRepository) SalesByProduct(ctx context.Context, start, end time.Time) ([]models.ProductSales, error) {
	var rows []models.ProductSales
	if err := r.get(ctx, "sales-by-product", rangeQuery(start, end), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesByCategory returns delivered revenue grouped by category.
func (r *RESTReportRepository) SalesByCategory(ctx context.Context, start, end time.Time) (*models.SalesByCategory, error) {
	var sales models.SalesByCategory
	if err := r.get(ctx, "sales-by-category", rangeQuery(start, end), &sales); err != nil {
		return nil, err
	}
	return &sales, nil
}

// SalesByMonth returns delivered revenue per month.
func (r *RESTReportRepository) SalesByMonth(ctx context.Context, start, end time.Time) ([]models.MonthlySales, error) {
	var rows []models.MonthlySales
	if err := r.get(ctx, "sales-by-month", rangeQuery(start, end), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopCustomers returns the best customers of the period.
func (r *RESTReportRepository) TopCustomers(ctx context.Context, start, end time.Time, limit int) ([]models.CustomerSales, error) {
	query := rangeQuery(start, end)
	query.Set("limit", strconv.Itoa(limit))

	var rows []models.CustomerSales
	if err := r.get(ctx, "top-customers", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DashboardStats returns the admin dashboard counters.
func (r *RESTReportRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := r.client.Do(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", mapError(err))
	}
	return &stats, nil
}

func rangeQuery(start, end time.Time) url.Values {
	return url.Values{
		"startDate": {start.Format(DateLayout)},
		"endDate":   {end.Format(DateLayout)},
	}
}
