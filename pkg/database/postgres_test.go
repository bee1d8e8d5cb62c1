package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "feira", Password: "s3cret", DBName: "storefront", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=feira password=s3cret dbname=storefront sslmode=disable", cfg.DSN())
}
