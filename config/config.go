// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	CleanupS3 = pflag.Bool("cleanup-s3", false, "Retries pending object deletions and exits")
	Recount   = pflag.Bool("recount", false, "Recomputes user video and like counters and exits")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validModes        = []string{"production", "development"}
	validStorageTypes = []string{"s3", "minio", "memory"}
	validDBDrivers    = []string{"sqlite", "postgres"}
	validCacheTypes   = []string{"memory", "redis"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.mode", "app_mode")

	v.BindEnv("host.port", "host_port", "port")
	v.BindEnv("host.cors", "host_cors", "frontend_url")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")
	v.BindEnv("host.request_timeout", "host_request_timeout")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn", "database_url")
	v.BindEnv("db.username", "db_username")
	v.BindEnv("db.password", "db_password")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.expiry", "jwt_expiry")

	v.BindEnv("identity.platform_api_url", "platform_api_url")
	v.BindEnv("identity.timeout", "identity_timeout")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.presign_expiry", "storage_presign_expiry")

	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket", "s3_bucket_name")
	v.BindEnv("aws.access_key", "aws_access_key_id")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.endpoint", "aws_endpoint")

	v.BindEnv("minio.endpoint", "minio_endpoint")
	v.BindEnv("minio.access_key", "minio_access_key")
	v.BindEnv("minio.secret_key", "minio_secret_key")
	v.BindEnv("minio.bucket", "minio_bucket")
	v.BindEnv("minio.use_ssl", "minio_use_ssl")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")
	v.BindEnv("upload.dir", "upload_dir")

	v.BindEnv("avatar.max_size", "avatar_max_size")

	v.BindEnv("cache.type", "cache_type")
	v.BindEnv("cache.ttl", "cache_ttl")
	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("security.rate_limit", "security_rate_limit")
	v.BindEnv("maintenance.schedule", "maintenance_schedule")

	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using environment variables and defaults")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return Validate()
}

// SetDefaults registers every default value. Setup calls it before reading
// the config file, tests call it directly.
func SetDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.mode", "production")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", "http://localhost:3000")
	v.SetDefault("host.ssl.enabled", false)
	v.SetDefault("host.request_timeout", 300*time.Second)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.expiry", 24*time.Hour)

	v.SetDefault("identity.platform_api_url", "https://api.minepi.com")
	v.SetDefault("identity.timeout", 10*time.Second)

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.presign_expiry", 3600*time.Second)

	v.SetDefault("minio.use_ssl", true)

	v.SetDefault("upload.max_size", 100)
	v.SetDefault("upload.allowed_types", []string{"video/mp4", "video/webm", "video/quicktime"})
	v.SetDefault("upload.dir", "uploads")

	v.SetDefault("avatar.max_size", 5)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 15)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.rate_limit", 0)
	v.SetDefault("maintenance.schedule", "@hourly")
}

// Validate checks the currently loaded values
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if !slices.Contains(validModes, v.GetString("app.mode")) {
		return errors.New("invalid app mode provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if Duration("host.request_timeout") <= 0 {
		return errors.New("host.request_timeout must be bigger than 0")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if Duration("jwt.expiry") <= 0 {
		return errors.New("jwt.expiry must be bigger than 0")
	}

	if Duration("identity.timeout") <= 0 {
		return errors.New("identity.timeout must be bigger than 0")
	}

	if v.GetString("identity.platform_api_url") == "" {
		return errors.New("identity.platform_api_url can't be empty")
	}

	if Duration("storage.presign_expiry") <= 0 {
		return errors.New("storage.presign_expiry must be bigger than 0")
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("aws.region") == "" {
				return errors.New("aws region can't be empty")
			}
			if v.GetString("aws.access_key") == "" {
				return errors.New("aws access key can't be empty")
			}
			if v.GetString("aws.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("aws.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "minio":
		{
			if v.GetString("minio.endpoint") == "" {
				return errors.New("minio endpoint can't be empty")
			}
			if v.GetString("minio.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "memory":
		{
			fmt.Println("[WARNING]: Using in-memory object storage, uploaded videos are lost on restart")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_types")) == 0 {
		fmt.Println("[WARNING]: No upload.allowed_types specified, any video type will be accepted")
	}

	if v.GetInt("avatar.max_size") <= 0 {
		return errors.New("avatar.max_size must be bigger than 0")
	}

	if !slices.Contains(validCacheTypes, v.GetString("cache.type")) {
		return errors.New("invalid cache type provided")
	}

	if v.GetInt("cache.ttl") < 0 {
		return errors.New("cache.ttl can't be negative")
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	return nil
}

// Duration reads a duration key. Plain numbers are seconds, anything else
// goes through time.ParseDuration ("90s", "24h").
func Duration(key string) time.Duration {
	if n, err := strconv.ParseInt(strings.TrimSpace(v.GetString(key)), 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}

	return v.GetDuration(key)
}

// Dev reports whether the app runs in development mode. Error details are
// only exposed to clients when it does.
func Dev() bool {
	return v.GetString("app.mode") == "development"
}
