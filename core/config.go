package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	GatewayConfig struct {
		BaseURL      string
		Timeout      time.Duration
		ProbeTimeout time.Duration
		Token        string // bearer token issued by the auth provider
	}

	DemoConfig struct {
		Store         string // memory | redis
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		KeyPrefix     string
	}

	ServerConfig struct {
		Host               string
		ShutdownTimeout    time.Duration
		SecretKey          string
		JWTExpirationDelta time.Duration
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		WorkDir      string

		Gateway GatewayConfig
		Demo    DemoConfig
		Server  ServerConfig
	}
)

const (
	DemoStoreMemory = "memory"
	DemoStoreRedis  = "redis"
)

// NewConfig loads the configuration from the environment.
// Variables are prefixed by ENV (DEV, TEST, QA, PROD), e.g. DEV_GATEWAY_BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "CoursePath")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("gateway.baseURL", "http://localhost:8080/api")
	conf.SetDefault("gateway.timeout", 10*time.Second)
	conf.SetDefault("gateway.probeTimeout", 3*time.Second)
	conf.SetDefault("gateway.token", "")
	conf.SetDefault("demo.store", DemoStoreMemory)
	conf.SetDefault("demo.redisAddr", "localhost:6379")
	conf.SetDefault("demo.redisPassword", "")
	conf.SetDefault("demo.redisDB", 0)
	conf.SetDefault("demo.keyPrefix", "coursepath:")
	conf.SetDefault("server.host", ":8080")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.secretKey", "w9$k2-lmq)zr7+x3=hd&pa@c1(j!v)#*s4(#fy6^$bnt8qe")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Gateway: GatewayConfig{
			BaseURL:      strings.TrimRight(conf.GetString("gateway.baseURL"), "/"),
			Timeout:      conf.GetDuration("gateway.timeout"),
			ProbeTimeout: conf.GetDuration("gateway.probeTimeout"),
			Token:        conf.GetString("gateway.token"),
		},
		Demo: DemoConfig{
			Store:         CleanString(conf.GetString("demo.store"), true /* lower */),
			RedisAddr:     conf.GetString("demo.redisAddr"),
			RedisPassword: conf.GetString("demo.redisPassword"),
			RedisDB:       conf.GetInt("demo.redisDB"),
			KeyPrefix:     conf.GetString("demo.keyPrefix"),
		},
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			SecretKey:          conf.GetString("server.secretKey"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
	}
}
