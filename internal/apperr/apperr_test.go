package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		kind        Kind
		relMissing  bool
		userMessage string
	}{
		{
			name:        "no rows",
			err:         sql.ErrNoRows,
			kind:        NotFound,
			userMessage: "not found",
		},
		{
			name:        "undefined table",
			err:         &pgconn.PgError{Code: "42P01", Message: `relation "categories" does not exist`},
			kind:        NotFound,
			relMissing:  true,
			userMessage: "not found",
		},
		{
			name:        "wrapped undefined table",
			err:         fmt.Errorf("select: %w", &pgconn.PgError{Code: "42P01"}),
			kind:        NotFound,
			relMissing:  true,
			userMessage: "not found",
		},
		{
			name:        "unique violation",
			err:         &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			kind:        Validation,
			userMessage: "duplicate key value violates unique constraint",
		},
		{
			name:        "invalid text representation",
			err:         &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"},
			kind:        Validation,
			userMessage: "invalid input syntax for type uuid",
		},
		{
			name:        "connection failure",
			err:         errors.New("dial tcp: connection refused"),
			kind:        Unknown,
			userMessage: "something went wrong, please try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("op", tt.err)
			assert.Equal(t, tt.kind, KindOf(got))
			assert.Equal(t, tt.relMissing, IsRelationMissing(got))
			assert.Equal(t, tt.userMessage, Message(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, Classify("op", nil))

	orig := Validationf("create", "name is required")
	assert.Same(t, orig, Classify("other", orig))
	assert.Equal(t, "name is required", Message(orig))
}
