package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/scorecard/api/internal/apperr"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			"missing project",
			apperr.NotFound("No project found"),
			http.StatusNotFound,
			`{"message":"No project found"}`,
		},
		{
			"missing user by username",
			apperr.NotFound("No user found with the username %q", "translator1"),
			http.StatusNotFound,
			`{"message":"No user found with the username \"translator1\""}`,
		},
		{
			"membership denied",
			apperr.Forbidden(),
			http.StatusForbidden,
			`{"message":"You do not have access to this project."}`,
		},
		{
			"duplicate membership",
			apperr.Conflict("%s has already been assigned to this project", "translator1"),
			http.StatusConflict,
			`{"message":"translator1 has already been assigned to this project"}`,
		},
		{
			"internal cause stays hidden",
			apperr.Internal(errors.New("pq: connection refused")),
			http.StatusInternalServerError,
			`{"message":"Something went wrong. Please try again later."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
