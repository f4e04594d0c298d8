package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env            string
	Port           string
	StoreName      string
	SessionSecret  string
	JWTSecret      string
	AllowedOrigins []string

	Scylla    ScyllaConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Elastic   ElasticConfig
	SMTP      SMTPConfig
	Checkout  CheckoutConfig
	Dashboard DashboardConfig
}

type ScyllaConfig struct {
	Hosts            []string
	SSLEnabled       bool
	CACertPath       string
	ProductsKeyspace string
	ProductsRole     string
	ProductsPassword string
	OrdersKeyspace   string
	OrdersRole       string
	OrdersPassword   string
}

type RedisConfig struct {
	Host     string
	Password string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// SignedURLTTL > 0 : bucket privé, les photos du catalogue sont servies en liens signés
	SignedURLTTL time.Duration
}

type ElasticConfig struct {
	URL      string
	User     string
	Password string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type CheckoutConfig struct {
	DeliveryDates []string
	CartDebounce  time.Duration
	DraftDebounce time.Duration
	DraftTTL      time.Duration
	SessionMaxAge time.Duration
	CartCacheSize int
}

type DashboardConfig struct {
	Delay    time.Duration
	Interval time.Duration
	Timezone string
}

// Load charge le fichier .env s'il existe
func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// FromEnv construit la configuration typée depuis l'environnement
func FromEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_NAME", "Doces de Natal")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "noreply@localhost")
	v.SetDefault("MINIO_BUCKET", "noel-images")
	v.SetDefault("DELIVERY_DATES", "24/12,31/12")
	v.SetDefault("CART_DEBOUNCE", 300*time.Millisecond)
	v.SetDefault("DRAFT_DEBOUNCE", 500*time.Millisecond)
	v.SetDefault("DRAFT_TTL", 24*time.Hour)
	v.SetDefault("SESSION_MAX_AGE", 7*24*time.Hour)
	v.SetDefault("CART_CACHE_SIZE", 10000)
	v.SetDefault("DASHBOARD_DELAY", 3*time.Second)
	v.SetDefault("DASHBOARD_INTERVAL", 10*time.Second)
	v.SetDefault("STORE_TIMEZONE", "America/Sao_Paulo")

	return &Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		StoreName:      v.GetString("STORE_NAME"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
		Scylla: ScyllaConfig{
			Hosts:            splitList(v.GetString("SCYLLA_HOSTS")),
			SSLEnabled:       strings.EqualFold(v.GetString("SCYLLA_SSL_ENABLED"), "true"),
			CACertPath:       v.GetString("SCYLLA_SSL_CA_PATH"),
			ProductsKeyspace: v.GetString("SCYLLA_KS_PRODUCTS_KEYSPACE"),
			ProductsRole:     v.GetString("SCYLLA_KS_PRODUCTS_ROLE"),
			ProductsPassword: v.GetString("SCYLLA_KS_PRODUCTS_PASSWORD"),
			OrdersKeyspace:   v.GetString("SCYLLA_KS_ORDERS_KEYSPACE"),
			OrdersRole:       v.GetString("SCYLLA_KS_ORDERS_ROLE"),
			OrdersPassword:   v.GetString("SCYLLA_KS_ORDERS_PASSWORD"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),

			SignedURLTTL: v.GetDuration("MINIO_SIGNED_URL_TTL"),
		},
		Elastic: ElasticConfig{
			URL:      v.GetString("ELASTIC_URL"),
			User:     v.GetString("ELASTIC_USER"),
			Password: v.GetString("ELASTIC_PASSWORD"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Checkout: CheckoutConfig{
			DeliveryDates: splitList(v.GetString("DELIVERY_DATES")),
			CartDebounce:  v.GetDuration("CART_DEBOUNCE"),
			DraftDebounce: v.GetDuration("DRAFT_DEBOUNCE"),
			DraftTTL:      v.GetDuration("DRAFT_TTL"),
			SessionMaxAge: v.GetDuration("SESSION_MAX_AGE"),
			CartCacheSize: v.GetInt("CART_CACHE_SIZE"),
		},
		Dashboard: DashboardConfig{
			Delay:    v.GetDuration("DASHBOARD_DELAY"),
			Interval: v.GetDuration("DASHBOARD_INTERVAL"),
			Timezone: v.GetString("STORE_TIMEZONE"),
		},
	}
}

// IsProduction vrai en production (messages d'erreur génériques, cookies sécurisés)
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate vérifie les identifiants indispensables au démarrage
func (c *Config) Validate() error {
	var missing []string
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(c.Scylla.Hosts) == 0 {
		missing = append(missing, "SCYLLA_HOSTS")
	}
	if c.Scylla.ProductsKeyspace == "" {
		missing = append(missing, "SCYLLA_KS_PRODUCTS_KEYSPACE")
	}
	if c.Scylla.OrdersKeyspace == "" {
		missing = append(missing, "SCYLLA_KS_ORDERS_KEYSPACE")
	}
	if c.Redis.Host == "" {
		missing = append(missing, "REDIS_HOST")
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuration incomplète, variables manquantes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Location fuseau horaire de la boutique, UTC si inconnu
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		log.Printf("⚠️ Fuseau horaire %q inconnu, utilisation de UTC", c.Dashboard.Timezone)
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
