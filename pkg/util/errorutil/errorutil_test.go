package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("passes domain errors through", func(t *testing.T) {
		err := NewForbidden("nope")
		de := ToDomainError(fmt.Errorf("wrapped: %w", err))
		require.NotNil(t, de)
		assert.Equal(t, CodeForbidden, de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		de := ToDomainError(pgx.ErrNoRows)
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("unique violation becomes conflict", func(t *testing.T) {
		de := ToDomainError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})
		assert.Equal(t, CodeConflict, de.Code)
		assert.Equal(t, "accounts_email_key", de.Details["constraint"])
	})

	t.Run("foreign key violation becomes validation", func(t *testing.T) {
		de := ToDomainError(&pgconn.PgError{Code: "23503"})
		assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		de := ToDomainError(errors.New("boom"))
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}

func TestIsSessionExpired(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"jwt message", errors.New("JWT expired"), true},
		{"session message", errors.New("invalid session"), true},
		{"unauthorized message", errors.New("Unauthorized"), true},
		{"portuguese message", errors.New(SessionExpiredMessage), true},
		{"postgrest code", &pgconn.PgError{Code: "PGRST301", Message: "x"}, true},
		{"status code", &pgconn.PgError{Code: "401", Message: "x"}, true},
		{"session domain error", NewSessionExpired(), true},
		{"timeout domain error", NewTimeout("A requisição demorou muito."), false},
		{"deadline", context.DeadlineExceeded, false},
		{"plain data error", errors.New("duplicate key value"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSessionExpired(tc.err))
		})
	}
}

func TestToDomainError_SessionMessage(t *testing.T) {
	de := ToDomainError(errors.New("token is expired"))
	assert.Equal(t, CodeSessionExpired, de.Code)
	assert.Equal(t, SessionExpiredMessage, de.Message)
}
