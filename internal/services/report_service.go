package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"capristore/internal/models"
	"capristore/internal/repositories"
)

const (
	defaultTopCustomers = 10
	maxTopCustomers     = 100
)

// DateRange is an inclusive period of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two YYYY-MM-DD days. Both are required and start may not be after end.
func ParseDateRange(start, end string) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidDateRange)
	}
	s, err := time.Parse(repositories.DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: startDate %q is not YYYY-MM-DD", ErrInvalidDateRange, start)
	}
	e, err := time.Parse(repositories.DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: endDate %q is not YYYY-MM-DD", ErrInvalidDateRange, end)
	}
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: startDate is after endDate", ErrInvalidDateRange)
	}
	return DateRange{Start: s, End: e}, nil
}

// ReportService exposes the backend's sales reports to administrators.
type ReportService struct {
	repo repositories.ReportRepository
}

// NewReportService creates a new ReportService.
func NewReportService(repo repositories.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// Orders returns the tabular orders report.
func (s *ReportService) Orders(ctx context.Context, r DateRange) ([]models.ReportOrder, error) {
	return s.repo.Orders(ctx, r.Start, r.End)
}

// Statistics returns the headline figures.
func (s *ReportService) Statistics(ctx context.Context, r DateRange) (*models.ReportStats, error) {
	return s.repo.Statistics(ctx, r.Start, r.End)
}

// SalesByProduct returns delivered sales per product.
func (s *ReportService) SalesByProduct(ctx context.Context, r DateRange) ([]models.ProductSales, error) {
	return s.repo.SalesByProduct(ctx, r.Start, r.End)
}

// SalesByCategory returns delivered revenue per category.
func (s *ReportService) SalesByCategory(ctx context.Context, r DateRange) (*models.SalesByCategory, error) {
	return s.repo.SalesByCategory(ctx, r.Start, r.End)
}

// SalesByMonth returns delivered revenue per month.
func (s *ReportService) SalesByMonth(ctx context.Context, r DateRange) ([]models.MonthlySales, error) {
	return s.repo.SalesByMonth(ctx, r.Start, r.End)
}

// TopCustomers returns the best customers; limit defaults to 10 and is capped at 100.
func (s *ReportService) TopCustomers(ctx context.Context, r DateRange, limit int) ([]models.CustomerSales, error) {
	switch {
	case limit <= 0:
		limit = defaultTopCustomers
	case limit > maxTopCustomers:
		limit = maxTopCustomers
	}
	return s.repo.TopCustomers(ctx, r.Start, r.End, limit)
}

// Dashboard returns the admin dashboard counters.
func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

// WriteOrdersCSV writes the orders report as CSV with a header row.
func WriteOrdersCSV(w io.Writer, rows []models.ReportOrder) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"order_number", "customer", "date", "status", "items", "payment_method", "total"})
	for _, r := range rows {
		records = append(records, []string{
			r.OrderNumber,
			r.CustomerName,
			r.OrderDate.Format(time.RFC3339),
			r.Status,
			strconv.Itoa(r.ItemCount),
			r.PaymentMethod,
			r.TotalAmount.StringFixed(2),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write orders csv: %w", err)
	}
	return nil
}

// WriteSalesByProductCSV writes the product sales report as CSV with a header row.
func WriteSalesByProductCSV(w io.Writer, rows []models.ProductSales) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"product", "quantity", "orders", "revenue", "percentage"})
	for _, r := range rows {
		records = append(records, []string{
			r.ProductName,
			strconv.Itoa(r.TotalQuantity),
			strconv.FormatInt(r.OrderCount, 10),
			r.TotalRevenue.StringFixed(2),
			r.PercentageOfTotal.StringFixed(2),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write sales csv: %w", err)
	}
	return nil
}
