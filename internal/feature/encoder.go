package feature

import (
	"fmt"
	"sort"

	"churn-analytics/internal/dto"
)

// LabelEncoder maps categories to their index in the sorted class list.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// FitLabelEncoder builds an encoder over the unique values, sorted ascending.
func FitLabelEncoder(values []string) LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return LabelEncoder{Classes: classes}
}

func (e LabelEncoder) Encode(value string) (int, error) {
	idx := sort.SearchStrings(e.Classes, value)
	if idx >= len(e.Classes) || e.Classes[idx] != value {
		return 0, fmt.Errorf("%w: %q", dto.ErrUnknownCategory, value)
	}
	return idx, nil
}

func (e LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("%w: code %d out of range", dto.ErrInvalidInput, code)
	}
	return e.Classes[code], nil
}

// EncoderTables are fitted once on the training population and travel with
// the model artifact.
type EncoderTables struct {
	Gender             LabelEncoder `json:"gender"`
	Country            LabelEncoder `json:"country"`
	SubscriptionStatus LabelEncoder `json:"subscription_status"`
}

func FitEncoders(records []CustomerRecord) EncoderTables {
	genders := make([]string, len(records))
	countries := make([]string, len(records))
	statuses := make([]string, len(records))
	for i, r := range records {
		genders[i] = r.Gender
		countries[i] = r.Country
		statuses[i] = r.SubscriptionStatus
	}
	return EncoderTables{
		Gender:             FitLabelEncoder(genders),
		Country:            FitLabelEncoder(countries),
		SubscriptionStatus: FitLabelEncoder(statuses),
	}
}
