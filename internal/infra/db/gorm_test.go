package db_test

import (
	"testing"

	"storefront/internal/config"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLiteAndMigrate(t *testing.T) {
	cfg := config.Config{DatabaseURL: "sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared"}

	gdb, err := db.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	for _, table := range []string{"users", "products", "cart_items", "orders", "order_items", "shipping_addresses", "audit_logs"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
	assert.True(t, gdb.Migrator().HasIndex("shipping_addresses", "idx_shipping_addresses_default"))
}
