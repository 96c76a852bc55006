package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportOrder is one row of the tabular orders report.
type ReportOrder struct {
	OrderNumber   string          `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	OrderDate     time.Time       `json:"orderDate"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ItemCount     int             `json:"itemCount"`
	PaymentMethod string          `json:"paymentMethod"`
}

// ReportStats are the headline figures for a period.
type ReportStats struct {
	TotalOrders       int64           `json:"totalOrders"`
	DeliveredOrders   int64           `json:"deliveredOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	PeriodStart       string          `json:"periodStart"`
	PeriodEnd         string          `json:"periodEnd"`
}

// ProductSales aggregates delivered sales of one product.
type ProductSales struct {
	ProductName       string          `json:"productName"`
	TotalQuantity     int             `json:"totalQuantity"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	OrderCount        int64           `json:"orderCount"`
	PercentageOfTotal decimal.Decimal `json:"percentageOfTotal"`
}

// CategorySales is the revenue share of one category.
type CategorySales struct {
	Category   string          `json:"category"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage decimal.Decimal `json:"percentage"`
}

// SalesByCategory is the category breakdown plus its grand total.
type SalesByCategory struct {
	Data         []CategorySales `json:"data"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// MonthlySales is the delivered revenue of one month (YYYY-MM).
type MonthlySales struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CustomerSales ranks customers by delivered spend.
type CustomerSales struct {
	CustomerName string          `json:"customerName"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	OrderCount   int64           `json:"orderCount"`
}

// DashboardStats feeds the admin dashboard cards.
type DashboardStats struct {
	TotalProducts      int64           `json:"totalProducts"`
	AvailableProducts  int64           `json:"availableProducts"`
	OutOfStockProducts int64           `json:"outOfStockProducts"`
	LowStockProducts   int64           `json:"lowStockProducts"`
	TotalOrders        int64           `json:"totalOrders"`
	PendingOrders      int64           `json:"pendingOrders"`
	ConfirmedOrders    int64           `json:"confirmedOrders"`
	DeliveredOrders    int64           `json:"deliveredOrders"`
	CancelledOrders    int64           `json:"cancelledOrders"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	MonthlyRevenue     decimal.Decimal `json:"monthlyRevenue"`
	TotalUsers         int64           `json:"totalUsers"`
	ActiveUsers        int64           `json:"activeUsers"`
}
