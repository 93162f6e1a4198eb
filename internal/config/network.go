package config

import (
	"fmt"
)

// DatabaseConfig selects and locates the record store backend
type DatabaseConfig struct {
	Driver        string
	URL           string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
}

// GetDatabaseConfig returns database configuration from environment or defaults
func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:        getEnvOrDefault("DB_DRIVER", DefaultDatabaseDriver),
		URL:           getEnvOrDefault("DATABASE_URL", ""),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", DefaultSQLitePath),
		MongoURI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", DefaultMongoDatabase),
	}
}

// GetPostgresConnectionString constructs PostgreSQL connection string
func (dc DatabaseConfig) GetPostgresConnectionString() string {
	if dc.URL != "" {
		return dc.URL
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "lexscribe")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}
