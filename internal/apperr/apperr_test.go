package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation maps to 400", Validation("bad input"), http.StatusBadRequest},
		{"consistency maps to 400", Consistency("catalogue mismatch"), http.StatusBadRequest},
		{"not found maps to 404", NotFound("No project found"), http.StatusNotFound},
		{"forbidden maps to 403", Forbidden(), http.StatusForbidden},
		{"conflict maps to 409", Conflict("already assigned"), http.StatusConflict},
		{"internal maps to 500", Internal(errors.New("db down")), http.StatusInternalServerError},
		{"plain errors map to 500", errors.New("db down"), http.StatusInternalServerError},
		{"wrapped apperr keeps its status", fmt.Errorf("context: %w", NotFound("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestClientMessage(t *testing.T) {
	t.Run("client kinds expose their message", func(t *testing.T) {
		assert.Equal(t, "No project found", ClientMessage(NotFound("No project found")))
		assert.Equal(t, AccessForbiddenMessage, ClientMessage(Forbidden()))
	})

	t.Run("internal errors collapse to the generic message", func(t *testing.T) {
		err := Internal(errors.New("pq: connection refused"))
		assert.Equal(t, GenericMessage, ClientMessage(err))
		// the cause stays available for the server log
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("non-apperr errors collapse to the generic message", func(t *testing.T) {
		assert.Equal(t, GenericMessage, ClientMessage(errors.New("boom")))
	})
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal(cause)

	assert.True(t, errors.Is(err, cause))
}
