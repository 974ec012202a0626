package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"adaptgrant"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Redis backs the analytics cache
	RedisAddr            string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword        string `envconfig:"REDIS_PASSWORD"`
	RedisDB              int    `envconfig:"REDIS_DB" default:"0"`
	AnalyticsCacheTTLSec uint   `envconfig:"ANALYTICS_CACHE_TTL_SEC" default:"300"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Application documents
	S3BucketName     string `envconfig:"S3_BUCKET"`
	DocumentMaxBytes int64  `envconfig:"DOCUMENT_MAX_BYTES" default:"10485760"`

	// Outbound email, disabled when SMTPHost is empty
	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER"`
	SMTPPass string `envconfig:"SMTP_PASS"`
	SMTPFrom string `envconfig:"SMTP_FROM"`

	// Mandatory age gate, inclusive on both ends
	MinApplicantAge int `envconfig:"MIN_APPLICANT_AGE" default:"18"`
	MaxApplicantAge int `envconfig:"MAX_APPLICANT_AGE" default:"35"`
}
