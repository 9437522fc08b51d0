package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	LoginGuard    LoginGuardConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	GCP           GCPConfig
	GCS           GCSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HUISVIND_APP_ENV" required:"true"`
	Port         string `envconfig:"HUISVIND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HUISVIND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HUISVIND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HUISVIND_DB_DSN"`
	Driver string `envconfig:"HUISVIND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HUISVIND_DB_HOST"`
	LegacyPort     int    `envconfig:"HUISVIND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HUISVIND_DB_USER"`
	LegacyPassword string `envconfig:"HUISVIND_DB_PASSWORD"`
	LegacyName     string `envconfig:"HUISVIND_DB_NAME"`
	LegacySSLMode  string `envconfig:"HUISVIND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HUISVIND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HUISVIND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HUISVIND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HUISVIND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HUISVIND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HUISVIND_REDIS_ADDR"`
	Password     string        `envconfig:"HUISVIND_REDIS_PASSWORD"`
	DB           int           `envconfig:"HUISVIND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HUISVIND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HUISVIND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HUISVIND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HUISVIND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HUISVIND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HUISVIND_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HUISVIND_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"HUISVIND_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"HUISVIND_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HUISVIND_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HUISVIND_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HUISVIND_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HUISVIND_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HUISVIND_ARGON_KEY_LEN" default:"32"`
}

// AuthRateLimitConfig throttles the HTTP auth surface per IP/email counter.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"HUISVIND_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"HUISVIND_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"HUISVIND_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"HUISVIND_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"HUISVIND_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"HUISVIND_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// LoginGuardConfig tunes the per-session failed-attempt lockout inside the
// auth service. Distinct from AuthRateLimitConfig, which guards the HTTP edge.
type LoginGuardConfig struct {
	MaxAttempts     int           `envconfig:"HUISVIND_LOGIN_GUARD_MAX_ATTEMPTS" default:"5"`
	AttemptWindow   time.Duration `envconfig:"HUISVIND_LOGIN_GUARD_ATTEMPT_WINDOW" default:"5m"`
	LockoutDuration time.Duration `envconfig:"HUISVIND_LOGIN_GUARD_LOCKOUT_DURATION" default:"15m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HUISVIND_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HUISVIND_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"HUISVIND_CORS_ALLOWED_ORIGINS"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HUISVIND_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"HUISVIND_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HUISVIND_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"HUISVIND_GCS_BUCKET_NAME"`
	PublicBase string `envconfig:"HUISVIND_GCS_PUBLIC_BASE" default:"https://storage.googleapis.com"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DBDriverSQLite) {
		db.DSN = "file::memory:?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
