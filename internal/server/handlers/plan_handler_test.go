package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/chrisdamba/grocerplan/internal/demand"
	"github.com/chrisdamba/grocerplan/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&models.LookupError{MemberIndex: 0, Age: 200}, http.StatusUnprocessableEntity},
		{&models.ValidationError{ItemIDs: []string{"x"}}, http.StatusUnprocessableEntity},
		{demand.ErrNoMembers, http.StatusUnprocessableEntity},
		{&models.InfeasibleProblemError{Class: models.ConstraintCapacity}, http.StatusConflict},
		{fmt.Errorf("solve: %w", &models.SolverTimeoutError{}), http.StatusGatewayTimeout},
		{&models.InternalInconsistencyError{Detail: "rounding"}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
