package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("customer %q: %w", "C1", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("country %q: %w", "Mars", ErrUnknownCategory), http.StatusBadRequest},
		{ErrNoSalesHistory, http.StatusBadRequest},
		{ErrDegenerateLabels, http.StatusBadRequest},
		{fmt.Errorf("load: %w", ErrModelNotTrained), http.StatusConflict},
		{ErrTrainingInProgress, http.StatusConflict},
		{ErrFeatureDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), "%v", tt.err)
	}
}

func TestNewPage(t *testing.T) {
	q := PageQuery{}
	q.Normalize()
	p := NewPage([]int{1, 2}, q, 25)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrevious)

	last := NewPage[int](nil, PageQuery{Page: 3, PageSize: 10}, 25)
	assert.NotNil(t, last.Data)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)
}

func TestForecastSalesRequest_Normalize(t *testing.T) {
	r := ForecastSalesRequest{ProductID: "P1"}
	r.Normalize()
	assert.Equal(t, "monthly", r.ForecastPeriod)
	assert.Equal(t, 12, r.ForecastHorizon)
}
