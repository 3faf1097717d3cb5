package feature

import (
	"fmt"
	"math"
	"sort"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"
)

// SalesFeatureColumns is the column order of every calendar vector.
var SalesFeatureColumns = []string{"year", "month", "day_of_week", "day_of_year", "unit_price"}

type OrderRecord struct {
	ProductID uint
	Quantity  int
	UnitPrice float64
	OrderDate time.Time
}

// OrderRecordFromModel requires the order's Product to be loaded.
func OrderRecordFromModel(o model.Order) OrderRecord {
	rec := OrderRecord{
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		OrderDate: o.OrderDate,
	}
	if o.Product != nil {
		rec.UnitPrice = o.Product.UnitPrice
	}
	return rec
}

// SalesPoint is one (product, day) aggregate.
type SalesPoint struct {
	ProductID uint
	Date      time.Time
	Quantity  float64
	UnitPrice float64
}

type salesKey struct {
	productID uint
	day       time.Time
}

// AggregateSales groups orders by product and calendar day, summing quantity
// and averaging unit price. Output is sorted by product then date.
func AggregateSales(orders []OrderRecord) []SalesPoint {
	type acc struct {
		quantity float64
		priceSum float64
		count    int
	}
	groups := make(map[salesKey]*acc)
	for _, o := range orders {
		k := salesKey{productID: o.ProductID, day: utils.TruncateDay(o.OrderDate.UTC())}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.quantity += float64(o.Quantity)
		a.priceSum += o.UnitPrice
		a.count++
	}

	points := make([]SalesPoint, 0, len(groups))
	for k, a := range groups {
		points = append(points, SalesPoint{
			ProductID: k.productID,
			Date:      k.day,
			Quantity:  a.quantity,
			UnitPrice: a.priceSum / float64(a.count),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].ProductID != points[j].ProductID {
			return points[i].ProductID < points[j].ProductID
		}
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

func CalendarVector(date time.Time, unitPrice float64) []float64 {
	return []float64{
		float64(date.Year()),
		float64(date.Month()),
		float64(utils.ISOWeekdayIndex(date)),
		float64(date.YearDay()),
		unitPrice,
	}
}

// BuildSalesDataset turns aggregated points into calendar features and quantity targets.
func BuildSalesDataset(points []SalesPoint) (X [][]float64, y []float64) {
	X = make([][]float64, len(points))
	y = make([]float64, len(points))
	for i, p := range points {
		X[i] = CalendarVector(p.Date, p.UnitPrice)
		y[i] = p.Quantity
	}
	return X, y
}

// FutureDates returns n period anchors starting from start. Daily steps from
// start itself; the other periods land on the first period end (Sunday, month
// end, quarter end, year end) on or after start.
func FutureDates(start time.Time, period model.ForecastPeriod, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", dto.ErrInvalidInput, n)
	}
	day := utils.TruncateDay(start)
	dates := make([]time.Time, n)

	switch period {
	case model.PeriodDaily:
		for i := range dates {
			dates[i] = day.AddDate(0, 0, i)
		}
	case model.PeriodWeekly:
		first := utils.NextWeekday(day, time.Sunday)
		for i := range dates {
			dates[i] = first.AddDate(0, 0, 7*i)
		}
	case model.PeriodMonthly:
		for i := range dates {
			dates[i] = time.Date(day.Year(), day.Month()+time.Month(i)+1, 0, 0, 0, 0, 0, day.Location())
		}
	case model.PeriodQuarterly:
		first := utils.EndOfQuarter(day)
		for i := range dates {
			dates[i] = time.Date(first.Year(), first.Month()+time.Month(3*i)+1, 0, 0, 0, 0, 0, day.Location())
		}
	case model.PeriodYearly:
		for i := range dates {
			dates[i] = utils.EndOfYear(day.AddDate(i, 0, 0))
		}
	default:
		return nil, fmt.Errorf("%w: unknown forecast period %q", dto.ErrInvalidInput, period)
	}
	return dates, nil
}

// ClampQuantity floors negative predictions at zero; the stored quantity is
// the truncated integer.
func ClampQuantity(q float64) (float64, int) {
	if math.IsNaN(q) {
		return 0, 0
	}
	clamped := math.Max(0, q)
	return clamped, int(clamped)
}
