package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range strings.Split(Schema(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		assert.Contains(t, stmt, "IF NOT EXISTS", stmt)
	}
	assert.Contains(t, Schema(), "sku            VARCHAR(50)    NOT NULL UNIQUE")
}

func TestConnectPostgres_BadURL(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), "://nope", 5, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database url")
}
