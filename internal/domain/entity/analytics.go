package entity

// MonthlyRevenue is one month's revenue bucket, keyed "YYYY-MM".
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// SellerAnalytics summarizes a seller's performance for the dashboard.
// It is computed from the orders table on demand and never stored;
// cancelled orders are excluded.
type SellerAnalytics struct {
	TotalRevenue   float64          `json:"total_revenue"`
	TotalSales     int              `json:"total_sales"`
	TopProduct     string           `json:"top_product"`
	MonthlyRevenue []MonthlyRevenue `json:"monthly_revenue"`
}
