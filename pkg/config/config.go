package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// New reads the configuration from the environment. A .env file in the working directory is loaded
// first if present, variables already set in the environment take precedence.
func New() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %v", err)
	}

	privateKey, err := parsePrivateKey(requireEnv("PRIVATE_KEY"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		BasePath:  getEnv("BASE_PATH", ""),
		Hostname:  getEnv("HOSTNAME", "localhost"),
		Port:      getEnvAsInt("PORT", 8080),
		SiteURL:   strings.TrimSuffix(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		Redis: Redis{
			Host: requireEnv("REDIS_HOST"),
			Port: requireEnvAsInt("REDIS_PORT"),
		},
		Authentication: Authentication{
			PrivateKey:                   privateKey,
			AccessTokenExpirationSeconds: getEnvAsInt("ACCESS_TOKEN_EXPIRATION_IN_SECONDS", 7*24*60*60),
			SessionSecret:                requireEnv("SESSION_SECRET"),
			AdminDiscordIDs:              splitList(getEnv("ADMIN_DISCORD_IDS", "")),
		},
		Discord: OAuthProvider{
			Key:    requireEnv("DISCORD_KEY"),
			Secret: requireEnv("DISCORD_SECRET"),
		},
		Ship24: Ship24{
			APIKey:        getEnv("SHIP24_API_KEY", ""),
			WebhookSecret: getEnv("SHIP24_WEBHOOK_SECRET", ""),
		},
		OpenAI: OpenAI{
			APIKey: getEnv("OPENAI_API_KEY", ""),
		},
		SignupSerializable: getEnvAsBool("SIGNUP_SERIALIZABLE", false),
		JaegerEndpoint:     getEnv("JAEGER_ENDPOINT", ""),
	}, nil
}

// NewIngest reads the configuration of the FAQ ingest command: the database and the OpenAI key.
func NewIngest() (Ingest, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Ingest{}, fmt.Errorf("failed to load .env: %v", err)
	}

	return Ingest{
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		OpenAI: OpenAI{
			APIKey: requireEnv("OPENAI_API_KEY"),
		},
	}, nil
}

type Ingest struct {
	Postgresql Postgresql
	OpenAI     OpenAI
}

type Config struct {
	BasePath           string
	Hostname           string
	Port               int
	SiteURL            string
	LogPretty          bool
	Postgresql         Postgresql
	Redis              Redis
	Authentication     Authentication
	Discord            OAuthProvider
	Ship24             Ship24
	OpenAI             OpenAI
	SignupSerializable bool
	JaegerEndpoint     string
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type Redis struct {
	Host string
	Port int
}

type Authentication struct {
	PrivateKey                   *rsa.PrivateKey
	AccessTokenExpirationSeconds int
	SessionSecret                string
	AdminDiscordIDs              []string
}

type OAuthProvider struct {
	Key    string
	Secret string
}

// CallbackURL returns the OAuth callback for the given provider served by this application.
func (c Config) CallbackURL(provider string) string {
	return fmt.Sprintf("%s%s/auth/%s/callback", c.SiteURL, c.BasePath, provider)
}

type Ship24 struct {
	APIKey        string
	WebhookSecret string
}

type OpenAI struct {
	APIKey string
}

func parsePrivateKey(value string) (*rsa.PrivateKey, error) {
	// keys passed through the environment tend to have their newlines escaped
	value = strings.ReplaceAll(value, `\n`, "\n")
	block, _ := pem.Decode([]byte(value))
	if block == nil {
		return nil, errors.New("failed to decode PRIVATE_KEY as PEM")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PRIVATE_KEY: %v", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("PRIVATE_KEY is not an RSA key")
	}
	return rsaKey, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse %s as integer: %s", key, err.Error())
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Fatalf("Can't parse %s as boolean: %s", key, err.Error())
	}
	return value
}
