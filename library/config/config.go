package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-management/pkg/kafka"
	"github.com/Astemirdum/library-management/pkg/logger"
	"github.com/Astemirdum/library-management/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration
}

// Notify sizes the in-process notification queue and its publishers.
type Notify struct {
	Workers   int           `yaml:"workers" envconfig:"NOTIFY_WORKERS" default:"4"`
	QueueSize int           `yaml:"queueSize" envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
	Retries   int           `yaml:"retries" envconfig:"NOTIFY_RETRIES" default:"3"`
	Backoff   time.Duration `yaml:"backoff" envconfig:"NOTIFY_BACKOFF" default:"500ms"`
}

type Auth struct {
	Secret     string        `yaml:"secret" envconfig:"AUTH_SECRET" default:"change-me" json:"-"`
	TokenTTL   time.Duration `yaml:"tokenTTL" envconfig:"ACCESS_TOKEN_TTL" default:"3h"`
	BcryptCost int           `yaml:"bcryptCost" envconfig:"BCRYPT_COST" default:"12"`
	Required   bool          `yaml:"required" envconfig:"AUTH_REQUIRED" default:"false"`
}

type Config struct {
	Server   HTTPServer  `yaml:"server"`
	Database postgres.DB `yaml:"db"`
	Kafka    kafka.Config
	Notify   Notify     `yaml:"notify"`
	Auth     Auth       `yaml:"auth"`
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
