package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Recommend RecommendConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// RecommendConfig holds the tunables of the recommendation engine and its batch jobs.
type RecommendConfig struct {
	Timeout             time.Duration
	CacheTTL            time.Duration
	SimilarityMaxUsers  int
	ScoreBatchSize      int
	BatchRatePerSecond  float64
	JobLockTTL          time.Duration
	SimilarityScheduleH int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	maxUsers, err := getEnvInt("RECOMMEND_SIMILARITY_MAX_USERS", 1000)
	if err != nil {
		return nil, errors.New("invalid RECOMMEND_SIMILARITY_MAX_USERS")
	}

	batchSize, err := getEnvInt("RECOMMEND_SCORE_BATCH_SIZE", 100)
	if err != nil {
		return nil, errors.New("invalid RECOMMEND_SCORE_BATCH_SIZE")
	}

	scheduleHour, err := getEnvInt("RECOMMEND_SIMILARITY_SCHEDULE_HOUR", 3)
	if err != nil || scheduleHour < 0 || scheduleHour > 23 {
		return nil, errors.New("invalid RECOMMEND_SIMILARITY_SCHEDULE_HOUR")
	}

	batchRate, err := strconv.ParseFloat(getEnv("RECOMMEND_BATCH_RATE", "50"), 64)
	if err != nil {
		return nil, errors.New("invalid RECOMMEND_BATCH_RATE")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BestInClick Recommendations"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bestinclick"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Recommend: RecommendConfig{
			Timeout:             getEnvDuration("RECOMMEND_TIMEOUT", 2*time.Second),
			CacheTTL:            getEnvDuration("RECOMMEND_CACHE_TTL", 5*time.Minute),
			SimilarityMaxUsers:  maxUsers,
			ScoreBatchSize:      batchSize,
			BatchRatePerSecond:  batchRate,
			JobLockTTL:          getEnvDuration("RECOMMEND_JOB_LOCK_TTL", 30*time.Minute),
			SimilarityScheduleH: scheduleHour,
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	return strconv.Atoi(val)
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
