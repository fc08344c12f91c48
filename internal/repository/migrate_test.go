package repository

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unreachableDSN = "postgres://matchday@127.0.0.1:1/matchday?sslmode=disable&connect_timeout=1"

func TestNewMigrate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		migrations fstest.MapFS
		want       string
	}{
		{"bad url", "postgres://%zz", fstest.MapFS{}, "failed to parse database URL"},
		{"missing migrations", unreachableDSN, fstest.MapFS{}, "failed to create source driver"},
		{"unreachable database", unreachableDSN, fstest.MapFS{
			"migrations/000001_init.up.sql": {Data: []byte("SELECT 1;")},
		}, "failed to create postgres driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newMigrate(tt.url, tt.migrations)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMigrate_WrapsSetupFailure(t *testing.T) {
	err := Migrate(unreachableDSN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrate instance")
}
