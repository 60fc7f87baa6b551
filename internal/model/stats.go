package model

import (
	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalUsers     int
	TotalProducts  int
	TotalOrders    int
	TotalRevenue   decimal.Decimal
	RecentOrders   []Order
	TopProducts    []Product
	OrdersByStatus []StatusCount
	RevenueByMonth []MonthlyRevenue
}

type StatusCount struct {
	Status OrderStatus
	Count  int
}

type MonthlyRevenue struct {
	Year    int
	Month   int
	Revenue decimal.Decimal
	Orders  int
}
