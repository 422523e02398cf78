package initializers

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config gathers every environment setting the server reads.
type Config struct {
	DB_URL  string
	Port    string
	GinMode string

	// "jwt" verifies HS256 access tokens issued by the hosted auth service,
	// "firebase" verifies Firebase ID tokens.
	AuthProvider               string
	AuthJWTSecret              string
	FirebaseServiceAccountPath string
	SessionSecret              string
	ProfileCacheTTL            time.Duration

	CommentMaxLength     int
	CommentMaxDepth      int
	AllowModeratorDelete bool

	// AllowedOrigins defaults to SiteURL. "*" must be set explicitly.
	AllowedOrigins []string

	ResendAPIKey             string
	EmailFrom                string
	SiteURL                  string
	ReplyNotifyWindowMinutes int
}

var AppConfig = DefaultConfig()

func DefaultConfig() *Config {
	return &Config{
		Port:                     "8080",
		AuthProvider:             "jwt",
		SessionSecret:            "secret_key_change_me",
		ProfileCacheTTL:          5 * time.Minute,
		CommentMaxLength:         5000,
		CommentMaxDepth:          5,
		AllowedOrigins:           []string{"http://localhost:4321"},
		EmailFrom:                "PressTune <comments@presstune.io>",
		SiteURL:                  "http://localhost:4321",
		ReplyNotifyWindowMinutes: 10,
	}
}

// LoadConfig reads the environment (after LoadEnv) on top of DefaultConfig and
// stores the result in AppConfig.
func LoadConfig() *Config {
	def := DefaultConfig()
	siteURL := strings.TrimRight(getEnv("SITE_URL", def.SiteURL), "/")
	cfg := &Config{
		DB_URL:                     os.Getenv("DB_URL"),
		Port:                       getEnv("PORT", def.Port),
		GinMode:                    os.Getenv("GIN_MODE"),
		AuthProvider:               strings.ToLower(getEnv("AUTH_PROVIDER", def.AuthProvider)),
		AuthJWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
		FirebaseServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		SessionSecret:              getEnv("SESSION_SECRET", def.SessionSecret),
		ProfileCacheTTL:            getEnvDuration("PROFILE_CACHE_TTL", def.ProfileCacheTTL),
		CommentMaxLength:           getEnvInt("COMMENT_MAX_LENGTH", def.CommentMaxLength),
		CommentMaxDepth:            getEnvInt("COMMENT_MAX_DEPTH", def.CommentMaxDepth),
		AllowModeratorDelete:       getEnvBool("ALLOW_MODERATOR_DELETE", false),
		AllowedOrigins:             getEnvList("ALLOWED_ORIGINS", []string{siteURL}),
		ResendAPIKey:               os.Getenv("RESEND_API_KEY"),
		EmailFrom:                  getEnv("EMAIL_FROM", def.EmailFrom),
		SiteURL:                    siteURL,
		ReplyNotifyWindowMinutes:   getEnvInt("REPLY_NOTIFY_WINDOW_MINUTES", def.ReplyNotifyWindowMinutes),
	}

	if cfg.SessionSecret == def.SessionSecret {
		log.Println("WARNING: SESSION_SECRET not set, using the development default")
	}

	AppConfig = cfg
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Invalid value for %s (%q), using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid value for %s (%q), using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid value for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
