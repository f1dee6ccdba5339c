package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	OTPTTLSecs     int    // OTP code time-to-live in seconds
	OTPMaxAttempts int    // allowed OTP verification attempts per code
	ResetTTLSecs   int    // password reset token time-to-live in seconds
	UploadDir      string // base directory for stored upload files
	FrontendURL    string // customer frontend base URL (links in emails)
	SMTPHost       string // SMTP server host (empty disables email sending)
	SMTPPort       int    // SMTP server port
	SMTPUser       string // SMTP username
	SMTPPass       string // SMTP password
	SMTPFrom       string // From header for outbound email
	SweepHours     int    // hours between warranty expiry sweeps
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional values
// fall back to sensible defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),    // environment (dev/test/prod)
		Port:           must("APP_PORT"),   // port to bind the HTTP server
		DBUser:         must("DB_USER"),    // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),    // database host
		DBPort:         must("DB_PORT"),    // database port
		DBName:         must("DB_NAME"),    // database name
		JWTSecret:      must("JWT_SECRET"), // secret used for signing JWTs
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 15),   // TTL for access tokens in minutes
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 7),  // TTL for refresh tokens in days
		BcryptCost:     intOr("BCRYPT_COST", 12),            // bcrypt cost factor
		OTPTTLSecs:     intOr("OTP_EXPIRY_SECONDS", 300),    // OTP lifetime
		OTPMaxAttempts: intOr("OTP_MAX_ATTEMPTS", 3),        // OTP attempt cap
		ResetTTLSecs:   intOr("RESET_TOKEN_TTL_SECONDS", 3600), // reset token lifetime
		UploadDir:      strOr("STORAGE_LOCAL_PATH", "./uploads"),
		FrontendURL:    strOr("FRONTEND_URL", "http://localhost:3000"),
		SMTPHost:       os.Getenv("SMTP_HOST"), // empty means "log instead of send"
		SMTPPort:       intOr("SMTP_PORT", 587),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		SMTPFrom:       strOr("SMTP_FROM", "KomfyAz <noreply@komfyaz.com>"),
		SweepHours:     intOr("WARRANTY_SWEEP_HOURS", 24),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr retrieves an optional string variable with a default.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr retrieves an optional integer variable with a default.  A
// malformed value is fatal rather than silently ignored.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
