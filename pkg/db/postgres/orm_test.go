package postgres

import (
	"testing"

	"house_admin/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DBConfig{
		User:    "admin",
		Pass:    "secret",
		Host:    "db",
		DBName:  "houses",
		Port:    "5432",
		SSLMode: "disable",
	})
	assert.Equal(t, "user=admin password=secret host=db dbname=houses port=5432 sslmode=disable", dsn)
}
