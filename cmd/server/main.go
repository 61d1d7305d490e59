package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncstream/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	dbDriver = configVar[string]{
		envKey:       "DB_DRIVER",
		flagKey:      "db-driver",
		defaultValue: "sqlite",
	}
	dbHost = configVar[string]{
		envKey:       "DB_HOST",
		flagKey:      "db-host",
		defaultValue: "localhost",
	}
	dbPort = configVar[int]{
		envKey:       "DB_PORT",
		flagKey:      "db-port",
		defaultValue: 5432,
	}
	dbUser = configVar[string]{
		envKey:       "DB_USER",
		flagKey:      "db-user",
		defaultValue: "syncstream",
	}
	dbPassword = configVar[string]{
		envKey:       "DB_PASSWORD",
		flagKey:      "db-password",
		defaultValue: "",
	}
	dbName = configVar[string]{
		envKey:       "DB_NAME",
		flagKey:      "db-name",
		defaultValue: "syncstream",
	}
	dbSSLMode = configVar[string]{
		envKey:       "DB_SSL_MODE",
		flagKey:      "db-ssl-mode",
		defaultValue: "disable",
	}
	dbFilePath = configVar[string]{
		envKey:       "DB_FILE_PATH",
		flagKey:      "db-file-path",
		defaultValue: "syncstream.db",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	snapshotTTL = configVar[time.Duration]{
		envKey:       "SNAPSHOT_TTL",
		flagKey:      "snapshot-ttl",
		defaultValue: 24 * time.Hour,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(dbDriver.flagKey, dbDriver.defaultValue, "Database driver (postgres or sqlite)")
	pflag.String(dbHost.flagKey, dbHost.defaultValue, "Database host")
	pflag.Int(dbPort.flagKey, dbPort.defaultValue, "Database port")
	pflag.String(dbUser.flagKey, dbUser.defaultValue, "Database user")
	pflag.String(dbPassword.flagKey, dbPassword.defaultValue, "Database password")
	pflag.String(dbName.flagKey, dbName.defaultValue, "Database name")
	pflag.String(dbSSLMode.flagKey, dbSSLMode.defaultValue, "Database SSL mode")
	pflag.String(dbFilePath.flagKey, dbFilePath.defaultValue, "SQLite database file path")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Duration(snapshotTTL.flagKey, snapshotTTL.defaultValue, "Room snapshot TTL")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(dbDriver.flagKey, dbDriver.envKey)
	viper.BindEnv(dbHost.flagKey, dbHost.envKey)
	viper.BindEnv(dbPort.flagKey, dbPort.envKey)
	viper.BindEnv(dbUser.flagKey, dbUser.envKey)
	viper.BindEnv(dbPassword.flagKey, dbPassword.envKey)
	viper.BindEnv(dbName.flagKey, dbName.envKey)
	viper.BindEnv(dbSSLMode.flagKey, dbSSLMode.envKey)
	viper.BindEnv(dbFilePath.flagKey, dbFilePath.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(snapshotTTL.flagKey, snapshotTTL.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(dbDriver.flagKey, dbDriver.defaultValue)
	viper.SetDefault(dbHost.flagKey, dbHost.defaultValue)
	viper.SetDefault(dbPort.flagKey, dbPort.defaultValue)
	viper.SetDefault(dbUser.flagKey, dbUser.defaultValue)
	viper.SetDefault(dbPassword.flagKey, dbPassword.defaultValue)
	viper.SetDefault(dbName.flagKey, dbName.defaultValue)
	viper.SetDefault(dbSSLMode.flagKey, dbSSLMode.defaultValue)
	viper.SetDefault(dbFilePath.flagKey, dbFilePath.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(snapshotTTL.flagKey, snapshotTTL.defaultValue)

	config := &app.AppConfig{
		Host:          viper.GetString(host.flagKey),
		Port:          viper.GetInt(port.flagKey),
		LogLevel:      viper.GetString(logLevel.flagKey),
		DBDriver:      viper.GetString(dbDriver.flagKey),
		DBHost:        viper.GetString(dbHost.flagKey),
		DBPort:        viper.GetInt(dbPort.flagKey),
		DBUser:        viper.GetString(dbUser.flagKey),
		DBPassword:    viper.GetString(dbPassword.flagKey),
		DBName:        viper.GetString(dbName.flagKey),
		DBSSLMode:     viper.GetString(dbSSLMode.flagKey),
		DBFilePath:    viper.GetString(dbFilePath.flagKey),
		RedisHost:     viper.GetString(redisHost.flagKey),
		RedisPort:     viper.GetInt(redisPort.flagKey),
		RedisPassword: viper.GetString(redisPassword.flagKey),
		SnapshotTTL:   viper.GetDuration(snapshotTTL.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
