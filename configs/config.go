package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	PostgresURI         string
	RedisURI            string
	WebhookVerifyToken  string
	InstagramAppSecret  string
	GraphAPIBase        string
	PageAccessToken     string
	PageScopedSenderID  string
	QueueSigningKey     string
	QueueNextSigningKey string
	FrontendURL         string
	R2                  R2
	SecretKey           string
	CookieName          string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", "127.0.0.1:6379"),
		WebhookVerifyToken:  getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		InstagramAppSecret:  getEnv("INSTAGRAM_APP_SECRET", ""),
		GraphAPIBase:        getEnv("GRAPH_API_BASE", "https://graph.instagram.com/v21.0"),
		PageAccessToken:     getEnv("PAGE_ACCESS_TOKEN", ""),
		PageScopedSenderID:  getEnv("PAGE_SCOPED_SENDER_ID", "me"),
		QueueSigningKey:     getEnv("QUEUE_SIGNING_KEY", ""),
		QueueNextSigningKey: getEnv("QUEUE_NEXT_SIGNING_KEY", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "reeva_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
