package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/flagx"
	"github.com/dmitrijs2005/imagekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// "10m" style strings or integer nanoseconds. Fields left out of the file
// keep their previous values.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	Environment                 string         `json:"environment"`
	LogLevel                    string         `json:"log_level"`

	S3RootUser      string `json:"s3_root_user"`
	S3RootPassword  string `json:"s3_root_password"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	S3PublicBaseURL string `json:"s3_public_base_url"`

	SMTPHost        string         `json:"smtp_host"`
	SMTPPort        int            `json:"smtp_port"`
	SMTPUser        string         `json:"smtp_user"`
	SMTPPassword    string         `json:"smtp_password"`
	SMTPFrom        string         `json:"smtp_from"`
	MailerRateLimit float64        `json:"mailer_rate_limit"`
	NotifyTimeout   timex.Duration `json:"notify_timeout"`
	NotifyAttempts  int            `json:"notify_attempts"`
	NotifyBackoff   timex.Duration `json:"notify_backoff"`

	OTPLength            int            `json:"otp_length"`
	OTPExpiry            timex.Duration `json:"otp_expiry"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
	MinPasswordLength    int            `json:"min_password_length"`
	EchoOTPWithoutMailer *bool          `json:"echo_otp_without_mailer"`
	RedisAddr            string         `json:"redis_addr"`

	UploadDir           string         `json:"upload_dir"`
	MaxUploadBytes      int64          `json:"max_upload_bytes"`
	CORSOrigins         []string       `json:"cors_origins"`
	HealthCheckInterval timex.Duration `json:"health_check_interval"`
}

// parseJson overlays the file named by -c/-config onto config.
// A missing flag means nothing to load; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)

	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	if c.MailerRateLimit != 0 {
		config.MailerRateLimit = c.MailerRateLimit
	}
	setDuration(&config.NotifyTimeout, c.NotifyTimeout)
	setInt(&config.NotifyAttempts, c.NotifyAttempts)
	setDuration(&config.NotifyBackoff, c.NotifyBackoff)

	setInt(&config.OTPLength, c.OTPLength)
	setDuration(&config.OTPExpiry, c.OTPExpiry)
	setDuration(&config.SweepInterval, c.SweepInterval)
	setInt(&config.MinPasswordLength, c.MinPasswordLength)
	if c.EchoOTPWithoutMailer != nil {
		config.EchoOTPWithoutMailer = *c.EchoOTPWithoutMailer
	}
	setString(&config.RedisAddr, c.RedisAddr)

	setString(&config.UploadDir, c.UploadDir)
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
