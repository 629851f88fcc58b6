package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is_MatchesByCode(t *testing.T) {
	err := NoData("aggregation input is empty")

	assert.True(t, Is(err, ErrNoData))
	assert.False(t, Is(err, ErrInsufficientColumns))
	assert.False(t, Is(err, ErrNotFound))
}

func TestError_WithCause_Unwraps(t *testing.T) {
	cause := fmt.Errorf("read csv: boom")
	err := Internal("dataset load failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeNoData, http.StatusOK},
		{CodeInsufficientColumns, http.StatusOK},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}
