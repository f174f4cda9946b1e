package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// defaultEnvFile is read when present and no -env flag is given.
const defaultEnvFile = ".env"

// parseEnv overlays Config with environment variables. Values from a dotenv
// file (-env flag, or ./.env when present) are used for keys the process
// environment does not set. A missing default file is ignored; a missing or
// malformed explicit file panics.
//
// Recognised keys:
//
//	HTTP_ADDRESS, GRPC_ADDRESS, STORE_DRIVER, DATABASE_DSN, SECRET_KEY,
//	SESSION_VALIDITY, CACHE_REFRESH_INTERVAL, BCRYPT_COST, S3_ROOT_USER,
//	S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	ARCHIVE_ENABLED, LOG_LEVEL
func parseEnv(config *Config) {
	file := flagx.EnvFilePath(os.Args[1:])
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	values, err := godotenv.Read(file)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
		values = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}

	applyEnv(config, lookup)
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	str("GRPC_ADDRESS", &config.EndpointAddrGRPC)
	str("STORE_DRIVER", &config.StoreDriver)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	dur("SESSION_VALIDITY", &config.SessionValidityDuration)
	dur("CACHE_REFRESH_INTERVAL", &config.CacheRefreshInterval)
	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	if v, ok := lookup("ARCHIVE_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.ArchiveEnabled = b
	}
	str("LOG_LEVEL", &config.LogLevel)
}
