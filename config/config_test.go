package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDefaults(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("storage.type", "memory")
}

func TestDefaultsValidate(t *testing.T) {
	withDefaults(t)

	require.NoError(t, Validate())
	assert.False(t, Dev())
	assert.Equal(t, 24*time.Hour, viper.GetDuration("jwt.expiry"))
	assert.Equal(t, "https://api.minepi.com", viper.GetString("identity.platform_api_url"))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]map[string]any{
		"log level":      {"app.log_level": "loud"},
		"mode":           {"app.mode": "staging"},
		"port":           {"host.port": 0},
		"ssl cert":       {"host.ssl.enabled": true},
		"timeout":        {"host.request_timeout": "0s"},
		"db driver":      {"db.driver": "mysql"},
		"db dsn":         {"db.dsn": ""},
		"jwt expiry":     {"jwt.expiry": "-1h"},
		"identity url":   {"identity.platform_api_url": ""},
		"identity time":  {"identity.timeout": "0"},
		"presign":        {"storage.presign_expiry": "0s"},
		"storage type":   {"storage.type": "ftp"},
		"s3 credentials": {"storage.type": "s3"},
		"minio endpoint": {"storage.type": "minio"},
		"upload size":    {"upload.max_size": 0},
		"avatar size":    {"avatar.max_size": -1},
		"cache type":     {"cache.type": "memcached"},
		"cache ttl":      {"cache.ttl": -5},
		"rate limit":     {"security.rate_limit": -1},
	}

	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			withDefaults(t)

			for k, v := range overrides {
				viper.Set(k, v)
			}

			assert.Error(t, Validate())
		})
	}
}

func TestValidateStorageBackends(t *testing.T) {
	withDefaults(t)

	viper.Set("storage.type", "s3")
	viper.Set("aws.region", "eu-central-1")
	viper.Set("aws.access_key", "key")
	viper.Set("aws.secret_access_key", "secret")
	viper.Set("aws.bucket", "clips")
	assert.NoError(t, Validate())

	viper.Set("storage.type", "minio")
	viper.Set("minio.endpoint", "localhost:9000")
	viper.Set("minio.bucket", "clips")
	assert.NoError(t, Validate())
}

func TestDev(t *testing.T) {
	withDefaults(t)

	viper.Set("app.mode", "development")
	assert.True(t, Dev())
}

func TestDuration(t *testing.T) {
	withDefaults(t)

	assert.Equal(t, 24*time.Hour, Duration("jwt.expiry"))
	assert.Equal(t, time.Hour, Duration("storage.presign_expiry"))

	// Environment values arrive as strings
	viper.Set("storage.presign_expiry", "3600")
	assert.Equal(t, time.Hour, Duration("storage.presign_expiry"))

	viper.Set("host.request_timeout", 90)
	assert.Equal(t, 90*time.Second, Duration("host.request_timeout"))

	viper.Set("identity.timeout", "2m")
	assert.Equal(t, 2*time.Minute, Duration("identity.timeout"))

	require.NoError(t, Validate())

	viper.Set("jwt.expiry", "0")
	assert.Error(t, Validate())
}
