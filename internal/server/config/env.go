package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "IMAGEKEEPER_"

// loadDotenv loads the file named by -env, or ./.env when present.
// Variables already set in the process environment are not overridden.
func loadDotenv() {
	file := flagx.EnvFileFlag()
	if file == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(file); err != nil {
		panic(err)
	}
}

// parseEnv overlays IMAGEKEEPER_* environment variables onto config.
// Malformed numeric or duration values panic, like a malformed JSON file.
func parseEnv(config *Config) {
	loadDotenv()

	config.EndpointAddrHTTP = getenv("HTTP_ADDR", config.EndpointAddrHTTP)
	config.EndpointAddrGRPC = getenv("GRPC_ADDR", config.EndpointAddrGRPC)
	config.DatabaseDSN = getenv("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getenv("SECRET_KEY", config.SecretKey)
	config.AccessTokenValidityDuration = getdur("ACCESS_TOKEN_TTL", config.AccessTokenValidityDuration)
	config.Environment = getenv("ENV", config.Environment)
	config.LogLevel = getenv("LOG_LEVEL", config.LogLevel)

	config.S3RootUser = getenv("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getenv("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getenv("S3_BUCKET", config.S3Bucket)
	config.S3Region = getenv("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getenv("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.S3PublicBaseURL = getenv("S3_PUBLIC_BASE_URL", config.S3PublicBaseURL)

	config.SMTPHost = getenv("SMTP_HOST", config.SMTPHost)
	config.SMTPPort = getint("SMTP_PORT", config.SMTPPort)
	config.SMTPUser = getenv("SMTP_USER", config.SMTPUser)
	config.SMTPPassword = getenv("SMTP_PASSWORD", config.SMTPPassword)
	config.SMTPFrom = getenv("SMTP_FROM", config.SMTPFrom)
	config.MailerRateLimit = getfloat("MAILER_RATE_LIMIT", config.MailerRateLimit)
	config.NotifyTimeout = getdur("NOTIFY_TIMEOUT", config.NotifyTimeout)
	config.NotifyAttempts = getint("NOTIFY_ATTEMPTS", config.NotifyAttempts)
	config.NotifyBackoff = getdur("NOTIFY_BACKOFF", config.NotifyBackoff)

	config.OTPLength = getint("OTP_LENGTH", config.OTPLength)
	config.OTPExpiry = getdur("OTP_EXPIRY", config.OTPExpiry)
	config.SweepInterval = getdur("SWEEP_INTERVAL", config.SweepInterval)
	config.MinPasswordLength = getint("MIN_PASSWORD_LENGTH", config.MinPasswordLength)
	config.EchoOTPWithoutMailer = getbool("ECHO_OTP_WITHOUT_MAILER", config.EchoOTPWithoutMailer)
	config.RedisAddr = getenv("REDIS_ADDR", config.RedisAddr)

	config.UploadDir = getenv("UPLOAD_DIR", config.UploadDir)
	config.MaxUploadBytes = int64(getint("MAX_UPLOAD_BYTES", int(config.MaxUploadBytes)))
	if v := getenv("CORS_ORIGINS", ""); v != "" {
		config.CORSOrigins = splitList(v)
	}
	config.HealthCheckInterval = getdur("HEALTH_CHECK_INTERVAL", config.HealthCheckInterval)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	return n
}

func getfloat(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		panic(err)
	}
	return f
}

func getbool(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	return b
}

func getdur(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
