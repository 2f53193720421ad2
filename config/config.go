package config

import (
	"log"

	"github.com/caarlos0/env/v11"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                int      `env:"PORT" default:"8080"`
	Dsn                 string   `env:"DSN" default:"localhost:5432"`
	JwtSecret           string   `env:"JWT_SECRET"`
	JwtExpires          string   `env:"JWT_EXPIRES"`
	RefreshSecret       string   `env:"REFRESH_SECRET"`
	RefreshExpiry       string   `env:"REFRESH_EXPIRY"`
	SMTPHost            string   `env:"SMTP_HOST"`
	SMTPPort            int      `env:"SMTP_PORT"`
	SMTPUser            string   `env:"SMTP_USER"`
	SMTPPassword        string   `env:"SMTP_PASSWORD"`
	SMTPFrom            string   `env:"SMTP_FROM"`
	CloudinaryCloudName string   `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string   `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string   `env:"CLOUDINARY_API_SECRET"`
	GoogleClientID      string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL   string   `env:"GOOGLE_REDIRECT_URL"`
	GeminiAPIKey        string   `env:"GEMINI_API_KEY"`
	GeminiModel         string   `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	KafkaBrokers        []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic          string   `env:"KAFKA_TOPIC" envDefault:"phytoscan.detections"`
	OfflineDataPath     string   `env:"OFFLINE_DATA_PATH" envDefault:"data/official_reports_ni_2022_2025.json"`
	DatasetFolder       string   `env:"DATASET_FOLDER" envDefault:"dataset_agricola"`
	DatasetCrop         string   `env:"DATASET_CROP" envDefault:"frijol"`
	SignedURLTTLSeconds int      `env:"SIGNED_URL_TTL_SECONDS" envDefault:"3600"`
	PublicBaseURL       string   `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
}

func New() *Config {
	if loadErr := godotenv.Load(".env"); loadErr != nil {
		log.Printf("[Env]: unable to load .env file %v", loadErr)
	}

	var cfg Config

	if parseErr := env.Parse(&cfg); parseErr != nil {
		log.Printf("[Env]: failed to parse environment variables: %v", parseErr)
	}

	return &cfg
}
