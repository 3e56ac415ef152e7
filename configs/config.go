package configs

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	CBR      CBRConfig
	Loan     LoanConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	TTL    int // in hours
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

// CBRConfig holds Central Bank RF API configuration
type CBRConfig struct {
	APIURL string
}

// LoanConfig holds loan lifecycle defaults
type LoanConfig struct {
	// DefaultInterestRate applies when the CBR key rate is unavailable.
	DefaultInterestRate float64
	// RateMargin is added on top of the key rate at origination.
	RateMargin float64
	// SweepIntervalHours is the cadence of the overdue sweep.
	SweepIntervalHours int
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is loaded first if present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, err
	}

	jwtTTL, err := strconv.Atoi(getEnv("JWT_TTL", "24"))
	if err != nil {
		return nil, err
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, err
	}

	defaultRate, err := strconv.ParseFloat(getEnv("LOAN_DEFAULT_RATE", "10.0"), 64)
	if err != nil {
		return nil, err
	}

	rateMargin, err := strconv.ParseFloat(getEnv("LOAN_RATE_MARGIN", "5.0"), 64)
	if err != nil {
		return nil, err
	}

	sweepInterval, err := strconv.Atoi(getEnv("LOAN_SWEEP_INTERVAL_HOURS", "24"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "pawnshop_service"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "super_secret_key"),
			TTL:    jwtTTL,
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
			SMTPPort:     smtpPort,
			SMTPUser:     getEnv("SMTP_USER", "user"),
			SMTPPassword: getEnv("SMTP_PASSWORD", "password"),
			SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@pawnshop-service.com"),
		},
		CBR: CBRConfig{
			APIURL: getEnv("CBR_API_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		},
		Loan: LoanConfig{
			DefaultInterestRate: defaultRate,
			RateMargin:          rateMargin,
			SweepIntervalHours:  sweepInterval,
		},
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
