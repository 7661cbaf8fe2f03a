package utils

import (
	"gopkg.in/yaml.v2"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppPort string `yaml:"APP_PORT"`

	// Logging, info level JSON on stdout when empty
	LogLevel  string `yaml:"LOG_LEVEL"`
	LogOutput string `yaml:"LOG_OUTPUT"`
	LogFormat string `yaml:"LOG_FORMAT"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT configuration
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL"`
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Redis configuration, revoked tokens are kept in memory of the process when empty
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`
	RedisDB       string `yaml:"REDIS_DB"`

	// Recipe rules
	PaginationLimit     string `yaml:"PAGINATION_LIMIT"`
	MinCookingTime      string `yaml:"MIN_COOKING_TIME"`
	MinIngredientAmount string `yaml:"MIN_INGREDIENT_AMOUNT"`

	// Short links
	ShortLinkSalt      string `yaml:"SHORT_LINK_SALT"`
	ShortLinkMinLength string `yaml:"SHORT_LINK_MIN_LENGTH"`
}

var config Config

func LoadConfig() {
	LoadConfigFrom("config.yaml")
}

func LoadConfigFrom(path string) {
	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}
}

// GetConfig returns the value loaded from config.yaml, falling back to the
// environment variable of the same name.
func GetConfig(key string) string {
	if value := fromFile(key); value != "" {
		return value
	}
	return os.Getenv(key)
}

// GetConfigInt parses an integer setting, returning def when it is unset or malformed.
func GetConfigInt(key string, def int) int {
	raw := GetConfig(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer for %s: %q\n", key, raw)
		return def
	}
	return value
}

func fromFile(key string) string {
	switch key {
	case "APP_PORT":
		return config.AppPort
	case "LOG_LEVEL":
		return config.LogLevel
	case "LOG_OUTPUT":
		return config.LogOutput
	case "LOG_FORMAT":
		return config.LogFormat
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "APP_URL":
		return config.AppURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "REDIS_ADDR":
		return config.RedisAddr
	case "REDIS_PASSWORD":
		return config.RedisPassword
	case "REDIS_DB":
		return config.RedisDB
	case "PAGINATION_LIMIT":
		return config.PaginationLimit
	case "MIN_COOKING_TIME":
		return config.MinCookingTime
	case "MIN_INGREDIENT_AMOUNT":
		return config.MinIngredientAmount
	case "SHORT_LINK_SALT":
		return config.ShortLinkSalt
	case "SHORT_LINK_MIN_LENGTH":
		return config.ShortLinkMinLength
	default:
		return ""
	}
}
