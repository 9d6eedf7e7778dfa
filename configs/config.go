package config

import "os"

type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Storage struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	Facebook  OAuthApp
	Instagram OAuthApp
	Twitter   OAuthApp
	LinkedIn  OAuthApp

	PostgresURI string
	RedisURI    string
	FrontendURL string
	ServerAddr  string
	MetricsAddr string

	Storage Storage

	// SecretKey signs OAuth state tokens and session JWTs. Startup fails
	// when it is missing; it is never read from the environment after load.
	SecretKey  string
	CookieName string
}

func LoadConfig() *Config {
	return &Config{
		Facebook: OAuthApp{
			ClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
			ClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		},
		Instagram: OAuthApp{
			ClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
			ClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		},
		Twitter: OAuthApp{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TWITTER_REDIRECT_URI", ""),
		},
		LinkedIn: OAuthApp{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", ""),
		},
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9100"),
		Storage: Storage{
			AccountID:  getEnv("STORAGE_ACCOUNT_ID", ""),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			BucketName: getEnv("STORAGE_BUCKET_NAME", ""),
			PublicURL:  getEnv("STORAGE_PUBLIC_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "so_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
