package handlers

import (
	"bytes"
	"fmt"

	"capristore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReportHandler serves the admin dashboard and sales reports.
type ReportHandler struct {
	service *services.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterAdminRoutes registers the report routes on an admin-only group.
func (h *ReportHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/dashboard", h.HandleDashboard)

	reportRoutes := admin.Group("/reports")
	reportRoutes.Get("/orders", h.HandleOrders)
	reportRoutes.Get("/statistics", h.HandleStatistics)
	reportRoutes.Get("/sales-by-product", h.HandleSalesByProduct)
	reportRoutes.Get("/sales-by-category", h.HandleSalesByCategory)
	reportRoutes.Get("/sales-by-month", h.HandleSalesByMonth)
	reportRoutes.Get("/top-customers", h.HandleTopCustomers)
}

func (h *ReportHandler) HandleDashboard(c *fiber.Ctx) error {
	stats, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve dashboard", err)
	}
	return c.JSON(stats)
}

// HandleOrders returns the orders report as JSON, or CSV with format=csv.
func (h *ReportHandler) HandleOrders(c *fiber.Ctx) error {
	r, err := dateRangeFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid date range", err)
	}
	rows, err := h.service.Orders(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, "Could not build orders report", err)
	}
	if c.Query("format") != "csv" {
		return c.JSON(rows)
	}

	var buf bytes.Buffer
	if err := services.WriteOrdersCSV(&buf, rows); err != nil {
		return respondError(c, h.logger, "Could not export orders report", err)
	}
	return sendCSV(c, "orders", r, buf.Bytes())
}

func (h *ReportHandler) HandleStatistics(c *fiber.Ctx) error {
	r, err := dateRangeFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid date range", err)
	}
	stats, err := h.service.Statistics(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, "Could not build statistics", err)
	}
	return c.JSON(stats)
}

// HandleSalesByProduct returns product sales as JSON, or CSV with format=csv.
func (h *ReportHandler) HandleSalesByProduct(c *fiber.Ctx) error {
	r, err := dateRangeFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid date range", err)
	}
	rows, err := h.service.SalesByProduct(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, "Could not build sales report", err)
	}
	if c.Query("format") != "csv" {
		return c.JSON(rows)
	}

	var buf bytes.Buffer
	if err := services.WriteSalesByProductCSV(&buf, rows); err != nil {
		return respondError(c, h.logger, "Could not export sales report", err)
	}
	return sendCSV(c, "sales-by-product", r, buf.Bytes())
}

func (h *ReportHandler) HandleSalesByCategory(c *fiber.Ctx) error {
	r, err := dateRangeFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid date range", err)
	}
	sales, err := h.service.SalesByCategory(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, "Could not build sales report", err)
	}
	return c.JSON(sales)
}

func (h *ReportHandler) HandleSalesByMonth(c *fiber.Ctx) error {
	r, err := dateRangeFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid date range", err)
	}
	sales, err := h.service.SalesByMonth(c.UserContext(), r)
	if err != nil {
		return respondError(c, h.logger, "Could not build sales report", err)
	}
	return c.JSON(sales)
}

func (h *ReportHandler) HandleTopCustomers(c *fiber.Ctx) error {
	r, err := dateRangeFromQuery(c)
	if err != nil {
		return respondError(c, h.logger, "Invalid date range", err)
	}
	customers, err := h.service.TopCustomers(c.UserContext(), r, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.logger, "Could not build customer report", err)
	}
	return c.JSON(customers)
}

func dateRangeFromQuery(c *fiber.Ctx) (services.DateRange, error) {
	return services.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
}

func sendCSV(c *fiber.Ctx, name string, r services.DateRange, payload []byte) error {
	filename := fmt.Sprintf("%s_%s_%s.csv", name, r.Start.Format("20060102"), r.End.Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(payload)
}
