// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Sheets   SheetsConfig
	Drive    DriveConfig
	Storage  StorageConfig
	Planning PlanningConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogFormat      string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// DatabaseConfig points at the optional Postgres archive mirror.
type DatabaseConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir   string
	ExportDir string
	Timezone  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	SnapshotTTLSeconds int
}

// SheetsConfig configures the spreadsheet-backed store.
type SheetsConfig struct {
	Enabled             bool
	CredentialsJSON     string
	CredentialsFile     string
	SpreadsheetID       string
	PollIntervalSeconds int
	FetchConcurrency    int
}

type DriveConfig struct {
	CredentialsJSON string
	ImportFolderID  string
	DownloadDir     string
}

// StorageConfig configures the MinIO/S3 bucket used for exported workbooks.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type PlanningConfig struct {
	SafetyDays         int
	ROPSafetyDays      int
	OrderDeadlineDays  int
	ReceiverName       string
	FGSafeStockLevel   float64
	DashboardRangeDays int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_EXPORT_DIR"))

		instance = fromViper()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_LOG_FORMAT", "console")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "ppic")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("APP_DATA_DIR", "./data")
	viper.SetDefault("APP_EXPORT_DIR", "./data/exports")
	viper.SetDefault("APP_TIMEZONE", "Asia/Jakarta")

	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 30)

	viper.SetDefault("SHEETS_ENABLED", false)
	viper.SetDefault("SHEETS_CREDENTIALS_JSON", "")
	viper.SetDefault("SHEETS_CREDENTIALS_FILE", "")
	viper.SetDefault("SHEETS_SPREADSHEET_ID", "")
	viper.SetDefault("SHEETS_POLL_INTERVAL_SECONDS", 30)
	viper.SetDefault("SHEETS_FETCH_CONCURRENCY", 3)

	viper.SetDefault("DRIVE_CREDENTIALS_JSON", "")
	viper.SetDefault("DRIVE_IMPORT_FOLDER_ID", "")
	viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/imports")

	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "ppic-exports")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)

	viper.SetDefault("PLANNING_SAFETY_DAYS", 2)
	viper.SetDefault("PLANNING_ROP_SAFETY_DAYS", 2)
	viper.SetDefault("PLANNING_ORDER_DEADLINE_DAYS", 3)
	viper.SetDefault("PLANNING_RECEIVER_NAME", "Staff Logistik")
	viper.SetDefault("PLANNING_FG_SAFE_STOCK", 50)
	viper.SetDefault("PLANNING_DASHBOARD_RANGE_DAYS", 7)
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			LogFormat:      viper.GetString("SERVER_LOG_FORMAT"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			DataDir:   viper.GetString("APP_DATA_DIR"),
			ExportDir: viper.GetString("APP_EXPORT_DIR"),
			Timezone:  viper.GetString("APP_TIMEZONE"),
		},
		Cache: CacheConfig{
			Enabled:            viper.GetBool("CACHE_ENABLED"),
			RedisURL:           viper.GetString("REDIS_URL"),
			RedisHost:          viper.GetString("REDIS_HOST"),
			RedisPort:          viper.GetString("REDIS_PORT"),
			RedisPassword:      viper.GetString("REDIS_PASSWORD"),
			RedisDB:            viper.GetInt("REDIS_DB"),
			SnapshotTTLSeconds: viper.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
		},
		Sheets: SheetsConfig{
			Enabled:             viper.GetBool("SHEETS_ENABLED"),
			CredentialsJSON:     viper.GetString("SHEETS_CREDENTIALS_JSON"),
			CredentialsFile:     viper.GetString("SHEETS_CREDENTIALS_FILE"),
			SpreadsheetID:       viper.GetString("SHEETS_SPREADSHEET_ID"),
			PollIntervalSeconds: viper.GetInt("SHEETS_POLL_INTERVAL_SECONDS"),
			FetchConcurrency:    viper.GetInt("SHEETS_FETCH_CONCURRENCY"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("DRIVE_CREDENTIALS_JSON"),
			ImportFolderID:  viper.GetString("DRIVE_IMPORT_FOLDER_ID"),
			DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
		Planning: PlanningConfig{
			SafetyDays:         viper.GetInt("PLANNING_SAFETY_DAYS"),
			ROPSafetyDays:      viper.GetInt("PLANNING_ROP_SAFETY_DAYS"),
			OrderDeadlineDays:  viper.GetInt("PLANNING_ORDER_DEADLINE_DAYS"),
			ReceiverName:       viper.GetString("PLANNING_RECEIVER_NAME"),
			FGSafeStockLevel:   viper.GetFloat64("PLANNING_FG_SAFE_STOCK"),
			DashboardRangeDays: viper.GetInt("PLANNING_DASHBOARD_RANGE_DAYS"),
		},
	}
}

// Defaults returns a configuration built only from defaults and the current
// environment, without touching the filesystem. Used by tests and the CLI.
func Defaults() *Config {
	setDefaults()
	viper.AutomaticEnv()
	return fromViper()
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
