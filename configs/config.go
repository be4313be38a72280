package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Name     string `envconfig:"APP_NAME" default:"Study Space"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"72h"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminFullName string `envconfig:"ADMIN_FULL_NAME" default:"Platform Admin"`

	Gateway Gateway
	Booking Booking

	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`

	BrevoAPIKey     string `envconfig:"BREVO_API_KEY"`
	EmailSender     string `envconfig:"EMAIL_SENDER"`
	EmailSenderName string `envconfig:"EMAIL_SENDER_NAME"`

	CloudinaryURL    string `envconfig:"CLOUDINARY_URL"`
	CloudinaryFolder string `envconfig:"CLOUDINARY_FOLDER" default:"study_space_inventory"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text"`
	CORSOrigins  string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Gateway holds the payment provider credentials. KeySecret doubles as the
// HMAC key for checkout signatures.
type Gateway struct {
	BaseURL   string `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	KeyID     string `envconfig:"GATEWAY_KEY_ID"`
	KeySecret string `envconfig:"GATEWAY_KEY_SECRET" required:"true"`
	Currency  string `envconfig:"CURRENCY" default:"INR"`
}

type Booking struct {
	HoldWindow            time.Duration `envconfig:"HOLD_WINDOW" default:"5m"`
	PriceTolerance        float64       `envconfig:"PRICE_TOLERANCE" default:"0.5"`
	HoldSweepSpec         string        `envconfig:"HOLD_SWEEP_SPEC" default:"@every 1m"`
	AvailabilitySweepSpec string        `envconfig:"AVAILABILITY_SWEEP_SPEC" default:"@hourly"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*App, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a *App) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}
