package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress string
	MongoURI    string
	MongoDB     string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration

	BcryptCost int

	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string
	UploadTempDir string

	CookieDomain     string
	AllowedOrigins   []string
	AllowCredentials bool
}

// Load reads configuration from the environment. The two signing secrets and
// both TTLs are required; everything else has a workable default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"HTTP_ADDRESS", "MONGO_URI", "MONGO_DB",
		"ACCESS_TOKEN_SECRET", "ACCESS_TOKEN_TTL",
		"REFRESH_TOKEN_SECRET", "REFRESH_TOKEN_TTL",
		"BCRYPT_COST",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_PUBLIC_URL",
		"UPLOAD_TEMP_DIR", "COOKIE_DOMAIN", "ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("HTTP_ADDRESS", ":8000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "playtube")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("UPLOAD_TEMP_DIR", "./public/temp")
	v.SetDefault("ALLOWED_ORIGINS", "*")

	for _, key := range []string{
		"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	} {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("missing required config %s", key)
		}
	}

	accessTTL, err := time.ParseDuration(v.GetString("ACCESS_TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}
	refreshTTL, err := time.ParseDuration(v.GetString("REFRESH_TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("REFRESH_TOKEN_TTL (%s) must exceed ACCESS_TOKEN_TTL (%s)", refreshTTL, accessTTL)
	}

	return &Config{
		HTTPAddress:        v.GetString("HTTP_ADDRESS"),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDB:            v.GetString("MONGO_DB"),
		AccessTokenSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:     accessTTL,
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		RefreshTokenTTL:    refreshTTL,
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Region:           v.GetString("S3_REGION"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
		S3AccessKey:        v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:        v.GetString("S3_SECRET_KEY"),
		S3PublicURL:        v.GetString("S3_PUBLIC_URL"),
		UploadTempDir:      v.GetString("UPLOAD_TEMP_DIR"),
		CookieDomain:       v.GetString("COOKIE_DOMAIN"),
		AllowedOrigins:     splitOrigins(v.GetString("ALLOWED_ORIGINS")),
		AllowCredentials:   v.GetBool("ALLOW_CREDENTIALS"),
	}, nil
}

// splitOrigins parses a comma-separated origin list. The result is never
// empty: gin-contrib/cors panics on an empty AllowOrigins.
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
