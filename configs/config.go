package config

import "os"

type Storage struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// PlatformDefaults holds process-wide fallback credentials for one platform.
// Per-user stored credentials, when present, take precedence over these.
type PlatformDefaults struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Instagram     PlatformDefaults
	Tiktok        PlatformDefaults
	Youtube       PlatformDefaults
	PostgresURI   string
	RedisURI      string
	FrontendURL   string
	ShortLinkBase string
	Storage       Storage
	SecretKey     string
	CookieName    string
	CronSecret    string
	EncryptionKey string
}

func LoadConfig() *Config {
	return &Config{
		Instagram: PlatformDefaults{
			ClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
			ClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		},
		Tiktok: PlatformDefaults{
			ClientID:     getEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TIKTOK_REDIRECT_URI", ""),
		},
		Youtube: PlatformDefaults{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		RedisURI:      getEnv("REDIS_URI", ""),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		ShortLinkBase: getEnv("SHORT_LINK_BASE", "http://localhost:3000/s"),
		Storage: Storage{
			AccountID:  getEnv("STORAGE_ACCOUNT_ID", ""),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			BucketName: getEnv("STORAGE_BUCKET_NAME", ""),
			PublicURL:  getEnv("STORAGE_PUBLIC_URL", ""),
		},
		SecretKey:     getEnv("SECRET_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", ""),
		CronSecret:    getEnv("CRON_SECRET", ""),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
	}
}

// PlatformDefaultsFor returns the process-wide credentials for platform, or
// an empty value when the platform is unknown or unconfigured.
func (c *Config) PlatformDefaultsFor(platform string) PlatformDefaults {
	switch platform {
	case "instagram":
		return c.Instagram
	case "tiktok":
		return c.Tiktok
	case "youtube":
		return c.Youtube
	}
	return PlatformDefaults{}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
