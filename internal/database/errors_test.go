package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      ErrorClass
		retryable bool
	}{
		{name: "nil", err: nil, want: ErrorClassPermanent},
		{name: "no rows", err: sql.ErrNoRows, want: ErrorClassPermanent},
		{name: "serialization", err: &pq.Error{Code: "40001"}, want: ErrorClassSerialization, retryable: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: ErrorClassDeadlock, retryable: true},
		{name: "lock timeout", err: &pq.Error{Code: "55P03"}, want: ErrorClassTransient, retryable: true},
		{name: "unique", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: ErrorClassUniqueViolation},
		{name: "other", err: errors.New("boom"), want: ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "40001"}))
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	_, err := Migrate(context.Background(), nil, fstest.MapFS{}, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestMigrateNoFiles(t *testing.T) {
	fsys := fstest.MapFS{"README.md": &fstest.MapFile{Data: []byte("docs")}}
	n, err := Migrate(context.Background(), nil, fsys, MigrateUp)
	require.NoError(t, err)
	assert.Zero(t, n)
}
