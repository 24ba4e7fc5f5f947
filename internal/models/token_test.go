package models

import (
	"testing"
	"time"
)

func TestTokenIsExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{"created just now", now, false},
		{"one second old", now.Add(-time.Second), false},
		{"one second before the threshold", now.Add(-TokenTTL + time.Second), false},
		{"exactly at the threshold", now.Add(-TokenTTL), true},
		{"one second past the threshold", now.Add(-TokenTTL - time.Second), true},
		{"an hour old", now.Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &Token{Key: "k", UserID: "u", CreatedAt: tt.createdAt}
			if got := token.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
