package masker

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type dbSection struct {
	Password string `masked:"true"`
	Host     string
}

type appConfig struct {
	Name     string
	DB       dbSection
	Admins   []int64 `masked:"true"`
	Origins  []string
	Interval time.Duration
	Empty    []int64 `masked:"true"`
	internal string
}

func TestMaskSensitiveData(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"secret", "s****t"},
		{"ab", "****"},
		{"a", "****"},
		{"", "****"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskSensitiveData(tt.in), "input %q", tt.in)
	}
}

func TestMaskStructFields(t *testing.T) {
	cfg := appConfig{
		Name:     "house-admin",
		DB:       dbSection{Password: "mypassword", Host: "db.local"},
		Admins:   []int64{1001, 1002},
		Origins:  []string{"http://localhost:3000"},
		Interval: 10 * time.Minute,
		internal: "hidden",
	}
	got := maskStructFields(reflect.ValueOf(cfg), reflect.TypeOf(cfg))

	db, ok := got["DB"].(map[string]interface{})
	require.True(t, ok, "nested struct is a map")
	assert.Equal(t, "m****d", db["Password"])
	assert.Equal(t, "db.local", db["Host"])
	assert.Equal(t, "house-admin", got["Name"])
	assert.Equal(t, "[****]", got["Admins"])
	assert.Equal(t, []string{"http://localhost:3000"}, got["Origins"])
	assert.Equal(t, "10m0s", got["Interval"])
	assert.Equal(t, "", got["Empty"])
	assert.NotContains(t, got, "internal")
}

func TestLogConfigs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &dbSection{Password: "supersecret", Host: "db.local"}

	require.NoError(t, LogConfigs(zap.New(core), cfg))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "config", entry.Message)

	fields := entry.ContextMap()["dbSection"].(map[string]interface{})
	assert.Equal(t, "s****t", fields["Password"])
}

func TestLogConfigs_NotPointer(t *testing.T) {
	logger := zap.NewNop()
	assert.ErrorIs(t, LogConfigs(logger, dbSection{}), ErrConfigNotPointer)

	var nilCfg *dbSection
	assert.ErrorIs(t, LogConfigs(logger, nilCfg), ErrConfigNotPointer)

	n := 3
	assert.ErrorIs(t, LogConfigs(logger, &n), ErrConfigNotPointer)
}
