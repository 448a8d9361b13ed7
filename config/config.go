// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar — her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşınır.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her biri tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	LiveKit   LiveKitConfig
	Redis     RedisConfig
	SpamGuard SpamGuardConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/veyra.db)
}

// JWTConfig, access token ayarları.
type JWTConfig struct {
	Secret            string // Token imzalama anahtarı — GİZLİ TUTULMALI
	AccessTokenExpiry int    // Dakika cinsinden (varsayılan: 60)
}

// LiveKitConfig, harici ses/medya servisinin token ayarları.
// Medyanın kendisi bu sunucudan geçmez — sadece oda token'ı üretilir.
type LiveKitConfig struct {
	URL       string
	APIKey    string
	APISecret string
}

// RedisConfig, opsiyonel paylaşımlı spam guard store ayarları.
// Addr boşsa process-local in-memory store kullanılır (tek instance deploy).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SpamGuardConfig, spam koruması eşikleri.
//
// Her değer kendi sınır aralığına clamp edilmez — aralık dışı bir değer
// görüldüğünde varsayılana geri düşülür. Yanlış yapılandırılmış tek bir
// env değişkeni tüm mesajlaşmayı kilitleyemez.
type SpamGuardConfig struct {
	RateWindowMS    int // Mesaj sayma penceresi (varsayılan: 10000)
	MaxPerWindow    int // Pencere başına mesaj limiti (varsayılan: 6)
	DupWindowMS     int // Duplicate fingerprint penceresi (varsayılan: 15000)
	MaxIdentical    int // İzin verilen özdeş mesaj sayısı (varsayılan: 2)
	BlockDurationMS int // Limit aşımında blok süresi (varsayılan: 15000)
}

// Spam guard varsayılanları ve kabul edilen aralıklar.
const (
	defaultRateWindowMS    = 10000
	defaultMaxPerWindow    = 6
	defaultDupWindowMS     = 15000
	defaultMaxIdentical    = 2
	defaultBlockDurationMS = 15000
)

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// Dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	accessExpiry, err := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY_MINUTES: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/veyra.db"),
		},
		JWT: JWTConfig{
			Secret:            jwtSecret,
			AccessTokenExpiry: accessExpiry,
		},
		LiveKit: LiveKitConfig{
			URL:       getEnv("LIVEKIT_URL", "ws://localhost:7880"),
			APIKey:    getEnv("LIVEKIT_API_KEY", ""),
			APISecret: getEnv("LIVEKIT_API_SECRET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		SpamGuard: loadSpamGuard(),
	}

	return cfg, nil
}

// loadSpamGuard, spam guard eşiklerini okur ve her birini bağımsız olarak
// kendi aralığına göre doğrular. Aralık dışı veya parse edilemeyen değer
// varsayılana düşer — Load() bu yüzden hata dönmez, sadece log'lar.
func loadSpamGuard() SpamGuardConfig {
	return SpamGuardConfig{
		RateWindowMS:    boundedEnvInt("SPAM_RATE_WINDOW_MS", defaultRateWindowMS, 1000, 120000),
		MaxPerWindow:    boundedEnvInt("SPAM_MAX_PER_WINDOW", defaultMaxPerWindow, 1, 100),
		DupWindowMS:     boundedEnvInt("SPAM_DUP_WINDOW_MS", defaultDupWindowMS, 1000, 300000),
		MaxIdentical:    boundedEnvInt("SPAM_MAX_IDENTICAL", defaultMaxIdentical, 1, 20),
		BlockDurationMS: boundedEnvInt("SPAM_BLOCK_DURATION_MS", defaultBlockDurationMS, 1000, 600000),
	}
}

// boundedEnvInt, bir int env değişkenini [min, max] aralığında okur.
// Parse hatası veya aralık dışı değer → fallback + uyarı log'u.
func boundedEnvInt(key string, fallback, min, max int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	val, err := strconv.Atoi(raw)
	if err != nil || val < min || val > max {
		log.Printf("[config] %s=%q out of range [%d,%d], using default %d", key, raw, min, max, fallback)
		return fallback
	}
	return val
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
