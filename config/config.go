package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/models"
)

// Defaults used when the matching environment variable is unset or unparsable.
const (
	DefaultLifecycleSweep = "*/5 * * * *"
	DefaultPublishedHold  = 24 * time.Hour
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	AirtableAPIKey  string
	AirtableBaseID  string
	AirtableTableID string
	MakeWebhookURL  string

	SendGridAPIKey string
	EmailFrom      string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	CloudinaryURL          string
	CloudinaryAPISecret    string
	CloudinaryUploadPreset string

	// LifecycleScheduling gives new submissions a scheduler-owned lifecycle
	// starting at AI_VERIFICATION. Off, they are PUBLISHED straight away.
	LifecycleScheduling bool
	LifecycleSweep      string
	PublishedHold       time.Duration
	DemoTuningFile      string
}

// New sets up all config related services
func New() *Config {
	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),
		Env:          env,

		AirtableAPIKey:  os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:  os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTableID: os.Getenv("AIRTABLE_TABLE_ID"),
		MakeWebhookURL:  os.Getenv("MAKE_WEBHOOK_URL"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:      os.Getenv("EMAIL_FROM"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadPreset: os.Getenv("CLOUDINARY_UPLOAD_PRESET"),

		LifecycleScheduling: boolEnv("LIFECYCLE_SCHEDULING", false),
		LifecycleSweep:      stringEnv("LIFECYCLE_SWEEP", DefaultLifecycleSweep),
		PublishedHold:       durationEnv("PUBLISHED_HOLD", DefaultPublishedHold),
		DemoTuningFile:      os.Getenv("DEMO_TUNING_FILE"),
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		zap.S().Warnw("ignoring invalid boolean env var", "key", key, "value", v)
		return fallback
	}
	return b
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		zap.S().Warnw("ignoring invalid duration env var", "key", key, "value", v)
		return fallback
	}
	return d
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_, _ = w.Write(b)
}
