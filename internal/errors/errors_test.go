package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrTypeConnection, "store is unreachable")
	assert.Equal(t, "connection: store is unreachable", plain.Error())

	wrapped := Wrap(fmt.Errorf("dial tcp refused"), ErrTypeConnection, "store is unreachable")
	assert.Contains(t, wrapped.Error(), "dial tcp refused")
	assert.Equal(t, "dial tcp refused", wrapped.Unwrap().Error())
}

func TestIsTypeThroughWrapping(t *testing.T) {
	err := New(ErrTypeUnknownTable, "table not found: posts")
	outer := fmt.Errorf("during search: %w", err)

	assert.True(t, IsType(outer, ErrTypeUnknownTable))
	assert.False(t, IsType(outer, ErrTypeConnection))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeUnknownTable))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeTimeout, GetType(New(ErrTypeTimeout, "deadline exceeded")))
	assert.Equal(t, ErrTypeInternal, GetType(fmt.Errorf("plain")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "connection", err: New(ErrTypeConnection, "down"), retryable: true},
		{name: "timeout", err: New(ErrTypeTimeout, "slow"), retryable: true},
		{name: "unknown table", err: New(ErrTypeUnknownTable, "missing"), retryable: false},
		{name: "validation", err: New(ErrTypeValidation, "bad spec"), retryable: false},
		{name: "plain", err: fmt.Errorf("plain"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestHelperConstructors(t *testing.T) {
	tableErr := NewUnknownTable("posts")
	assert.Equal(t, ErrTypeUnknownTable, tableErr.Type)
	assert.Contains(t, tableErr.Message, "posts")
	assert.NotEmpty(t, tableErr.Suggestions)

	colErr := NewUnknownColumn("posts", "score")
	assert.Equal(t, ErrTypeUnknownColumn, colErr.Type)
	assert.Contains(t, colErr.Message, "score")
	assert.Contains(t, colErr.Message, "posts")
	assert.NotEmpty(t, colErr.Suggestions)
}
