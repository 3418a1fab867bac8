package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, "", AuthFailure, "get thread: Unauthorized (status 401)"},
		{"conflict", http.StatusConflict, "exists", ServerRejection, "get thread: exists (status 409)"},
		{"server error", http.StatusInternalServerError, "boom", ServerRejection, "get thread: boom (status 500)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus("get thread", tt.status, tt.body)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	inner := Network("list threads", errors.New("connection refused"))
	wrapped := fmt.Errorf("load threads: %w", inner)

	assert.Equal(t, NetworkFailure, KindOf(wrapped))
	assert.True(t, Is(wrapped, NetworkFailure))
	assert.False(t, Is(nil, NetworkFailure))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.ErrorContains(t, wrapped, "backend unavailable")
}
