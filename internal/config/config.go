// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/platable/insights-backend/internal/domain"
)

type Config struct {
	Server ServerConfig
	App    AppConfig
	Cache  CacheConfig
	Impact domain.ImpactParams
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	UploadDir      string
	MaxUploadBytes int64
	DefaultTopN    int
	MaskPIIInGrids bool
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KPITTLSeconds int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_MAX_UPLOAD_BYTES", int64(50*1024*1024))
		viper.SetDefault("APP_DEFAULT_TOP_N", 10)
		viper.SetDefault("APP_MASK_PII", true)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_KPI_TTL_SECONDS", 60)

		defaults := domain.DefaultImpactParams()
		viper.SetDefault("IMPACT_AVG_ORDER_WEIGHT_KG", defaults.AvgOrderWeightKg)
		viper.SetDefault("IMPACT_KG_PER_MEAL", defaults.KgPerMeal)
		viper.SetDefault("IMPACT_CO2E_PER_KG_FOOD_RESCUED", defaults.CO2ePerKgFoodRescued)
		viper.SetDefault("IMPACT_LAST_MILE_CO2E_DELIVERY_KG", defaults.LastMileCO2eDeliveryKg)
		viper.SetDefault("IMPACT_LAST_MILE_CO2E_PICKUP_KG", defaults.LastMileCO2ePickupKg)
		viper.SetDefault("IMPACT_ENABLE_PICKUP_CO2E_COMPONENT", defaults.EnablePickupCO2eComponent)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure the upload directory exists
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			App: AppConfig{
				UploadDir:      viper.GetString("APP_UPLOAD_DIR"),
				MaxUploadBytes: viper.GetInt64("APP_MAX_UPLOAD_BYTES"),
				DefaultTopN:    viper.GetInt("APP_DEFAULT_TOP_N"),
				MaskPIIInGrids: viper.GetBool("APP_MASK_PII"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				KPITTLSeconds: viper.GetInt("CACHE_KPI_TTL_SECONDS"),
			},
			Impact: domain.ImpactParams{
				AvgOrderWeightKg:          viper.GetFloat64("IMPACT_AVG_ORDER_WEIGHT_KG"),
				KgPerMeal:                 viper.GetFloat64("IMPACT_KG_PER_MEAL"),
				CO2ePerKgFoodRescued:      viper.GetFloat64("IMPACT_CO2E_PER_KG_FOOD_RESCUED"),
				LastMileCO2eDeliveryKg:    viper.GetFloat64("IMPACT_LAST_MILE_CO2E_DELIVERY_KG"),
				LastMileCO2ePickupKg:      viper.GetFloat64("IMPACT_LAST_MILE_CO2E_PICKUP_KG"),
				EnablePickupCO2eComponent: viper.GetBool("IMPACT_ENABLE_PICKUP_CO2E_COMPONENT"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
