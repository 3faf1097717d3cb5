package feature

import (
	"fmt"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"
	"churn-analytics/pkg/utils"
)

// ChurnFeatureColumns is the column order of every churn vector.
var ChurnFeatureColumns = []string{
	"age",
	"cancellations_count",
	"purchase_frequency",
	"ratings",
	"days_since_last_purchase",
	"gender_encoded",
	"country_encoded",
	"subscription_status_encoded",
}

const (
	churnMaxCancellations = 2
	churnMinFrequency     = 5
	churnMinRating        = 3.0
)

type CustomerRecord struct {
	ID                 uint
	CustomerID         string
	Age                int
	Gender             string
	Country            string
	SubscriptionStatus string
	CancellationsCount int
	PurchaseFrequency  int
	Rating             float64
	LastPurchaseDate   *time.Time
}

func CustomerRecordFromModel(c model.Customer) CustomerRecord {
	rec := CustomerRecord{
		ID:                 c.ID,
		CustomerID:         c.CustomerID,
		Age:                c.Age,
		Gender:             c.Gender,
		Country:            c.Country,
		SubscriptionStatus: c.SubscriptionStatus,
		CancellationsCount: c.CancellationsCount,
		PurchaseFrequency:  c.PurchaseFrequency,
		Rating:             c.Ratings,
	}
	if !c.LastPurchaseDate.IsZero() {
		last := c.LastPurchaseDate
		rec.LastPurchaseDate = &last
	}
	return rec
}

// ChurnLabel is the business rule for a churned customer; any one condition suffices.
func ChurnLabel(rec CustomerRecord) int {
	if rec.CancellationsCount > churnMaxCancellations ||
		rec.PurchaseFrequency < churnMinFrequency ||
		rec.Rating < churnMinRating {
		return 1
	}
	return 0
}

// DaysSince returns whole days between last and now, rounding partial days down.
func DaysSince(now time.Time, last *time.Time) (int, error) {
	if last == nil || last.IsZero() {
		return 0, dto.ErrMissingDate
	}
	return utils.DaysBetween(*last, now), nil
}

func BuildChurnVector(rec CustomerRecord, tables EncoderTables, now time.Time) ([]float64, error) {
	days, err := DaysSince(now, rec.LastPurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("last_purchase_date: %w", err)
	}
	gender, err := tables.Gender.Encode(rec.Gender)
	if err != nil {
		return nil, fmt.Errorf("gender: %w", err)
	}
	country, err := tables.Country.Encode(rec.Country)
	if err != nil {
		return nil, fmt.Errorf("country: %w", err)
	}
	status, err := tables.SubscriptionStatus.Encode(rec.SubscriptionStatus)
	if err != nil {
		return nil, fmt.Errorf("subscription_status: %w", err)
	}

	return []float64{
		float64(rec.Age),
		float64(rec.CancellationsCount),
		float64(rec.PurchaseFrequency),
		rec.Rating,
		float64(days),
		float64(gender),
		float64(country),
		float64(status),
	}, nil
}

type SkippedRecord struct {
	Key string
	Err error
}

// ChurnDataset holds the valid rows of a population; Records[i] produced X[i].
type ChurnDataset struct {
	X       [][]float64
	Y       []int
	Records []CustomerRecord
	Skipped []SkippedRecord
}

func (d ChurnDataset) Len() int {
	return len(d.X)
}

// BuildChurnDataset vectorises every record it can and reports the rest.
func BuildChurnDataset(records []CustomerRecord, tables EncoderTables, now time.Time) ChurnDataset {
	ds := ChurnDataset{
		X:       make([][]float64, 0, len(records)),
		Y:       make([]int, 0, len(records)),
		Records: make([]CustomerRecord, 0, len(records)),
	}
	for _, rec := range records {
		vec, err := BuildChurnVector(rec, tables, now)
		if err != nil {
			ds.Skipped = append(ds.Skipped, SkippedRecord{Key: rec.CustomerID, Err: err})
			continue
		}
		ds.X = append(ds.X, vec)
		ds.Y = append(ds.Y, ChurnLabel(rec))
		ds.Records = append(ds.Records, rec)
	}
	return ds
}
