package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSqlOperation(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{name: "select", sql: "SELECT id FROM events", expected: "select"},
		{name: "sqlc header", sql: "-- name: InsertRegistration :one\nINSERT INTO registrations (id) VALUES ($1)", expected: "insert"},
		{name: "cte", sql: "WITH expired AS (SELECT 1) UPDATE payment_orders SET status = 'FAILED'", expected: "with"},
		{name: "empty", sql: "", expected: "query"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sqlOperation(tc.sql))
		})
	}
}
