package dto

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingDate      = errors.New("missing or invalid date")
	ErrUnknownCategory  = errors.New("category not present in training encoder")
	ErrNoSalesHistory   = errors.New("no historical sales data available")
	ErrDegenerateLabels = errors.New("training labels contain a single class")
	ErrInsufficientData = errors.New("not enough records to train")

	ErrModelNotTrained    = errors.New("model has not been trained")
	ErrArtifactNotFound   = errors.New("model artifact not found")
	ErrTrainingInProgress = errors.New("training already in progress")

	ErrFeatureDisabled = errors.New("feature is disabled")
)

// StatusCode maps a service error onto the HTTP status returned to callers.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMissingDate),
		errors.Is(err, ErrUnknownCategory),
		errors.Is(err, ErrNoSalesHistory),
		errors.Is(err, ErrDegenerateLabels),
		errors.Is(err, ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, ErrModelNotTrained),
		errors.Is(err, ErrArtifactNotFound),
		errors.Is(err, ErrTrainingInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrFeatureDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
