package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	Port             string
	PublicBaseURL    string
	StorageDriver    string // "json" или "postgres"
	DBFile           string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	UploadDriver     string // "local" или "cloudinary"
	UploadDir        string
	MaxUploadSize    int64
	CloudinaryConfig CloudinaryConfig
	AppEnv           string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "renthub_user"),
		Password: getEnv("PGPASSWORD", "renthub_pass"),
		Name:     getEnv("PGDATABASE", "renthub"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "renthub"),
	}

	port := getEnv("PORT", "3000")

	cfg := &Config{
		Port:             port,
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		StorageDriver:    getEnv("STORAGE_DRIVER", "json"),
		DBFile:           getEnv("DB_FILE", "db.json"),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		UploadDriver:     getEnv("UPLOAD_DRIVER", "local"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:    5 * 1024 * 1024, // 5MB, как в исходном бэкенде
		CloudinaryConfig: cloudinaryConfig,
		AppEnv:           getEnv("APP_ENV", "production"),
	}

	if cfg.UploadDriver == "cloudinary" && cloudinaryConfig.CloudName == "" {
		log.Fatal("❌ Ошибка: UPLOAD_DRIVER=cloudinary, но CLOUDINARY_* переменные не заданы")
	}

	return cfg
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
