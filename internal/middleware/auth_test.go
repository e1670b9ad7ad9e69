package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Bearer a b", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	_, ok := GetPrincipal(ctx)
	assert.False(t, ok)
	assert.Empty(t, GetUserID(ctx))

	ctx = WithPrincipal(ctx, auth.Principal{UserID: "u1", Email: "a@example.com", Role: models.RoleAdmin})
	p, ok := GetPrincipal(ctx)
	assert.True(t, ok)
	assert.True(t, p.IsAdmin())
	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, "a@example.com", GetEmail(ctx))
}
