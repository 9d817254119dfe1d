package models

import "time"

// TimeSeriesPoint is one aggregated bucket of a daily series. Dates are
// strictly increasing within a series; days without activity are absent.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type TrendResult struct {
	Slope      float64        `json:"slope"`
	Intercept  float64        `json:"intercept"`
	Trend      TrendDirection `json:"trend"`
	Prediction float64        `json:"prediction"`
	RSquared   float64        `json:"r_squared"`
}

type ForecastResult struct {
	SMA      float64 `json:"sma"`
	EMA      float64 `json:"ema"`
	Forecast float64 `json:"forecast"`
}

type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

type ABCEntry struct {
	ProductID    string   `json:"product_id"`
	Name         string   `json:"name"`
	Class        ABCClass `json:"class"`
	Revenue      float64  `json:"revenue"`
	RevenueShare float64  `json:"revenue_share"`
}

type ABCClassification struct {
	A []ABCEntry `json:"a"`
	B []ABCEntry `json:"b"`
	C []ABCEntry `json:"c"`
}

// RFMScore carries per-dimension quintiles (1-5), their sum (3-15) and the
// resulting segment label. Quintiles are rank positions within the cohort of
// the call, never absolute thresholds.
type RFMScore struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Recency    int    `json:"recency"`
	Frequency  int    `json:"frequency"`
	Monetary   int    `json:"monetary"`
	Combined   int    `json:"combined"`
	Segment    string `json:"segment"`
}

type CategoryMargin struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Margin   float64 `json:"margin"`
}

type ProductMargin struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitsSold int     `json:"units_sold"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Margin    float64 `json:"margin"`
}

type ProfitReport struct {
	Revenue       float64          `json:"revenue"`
	Cost          float64          `json:"cost"`
	OverallMargin float64          `json:"overall_margin"`
	ByCategory    []CategoryMargin `json:"by_category"`
	ByProduct     []ProductMargin  `json:"by_product"`
}

type EOQResult struct {
	OrderQuantity int     `json:"order_quantity"`
	ReorderPoint  int     `json:"reorder_point"`
	DailyDemand   float64 `json:"daily_demand"`
}

// DashboardSnapshot bundles the company-wide reports rendered by the live
// dashboard. Per-product and per-customer reports stay on their own routes.
type DashboardSnapshot struct {
	Trend       TrendResult       `json:"trend"`
	Forecast    ForecastResult    `json:"forecast"`
	Inventory   ABCClassification `json:"inventory"`
	Segments    []RFMScore        `json:"segments"`
	Profit      ProfitReport      `json:"profit"`
	GeneratedAt time.Time         `json:"generated_at"`
}
