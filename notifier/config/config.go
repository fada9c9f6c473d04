package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-management/pkg/kafka"
	"github.com/Astemirdum/library-management/pkg/logger"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type SMTP struct {
	Host     string        `yaml:"host" envconfig:"SMTP_HOST" default:"smtp.yandex.ru"`
	Port     string        `yaml:"port" envconfig:"SMTP_PORT" default:"465"`
	Username string        `yaml:"username" envconfig:"SMTP_USER"`
	Password string        `yaml:"password" envconfig:"SMTP_PASSWORD" json:"-"`
	From     string        `yaml:"from" envconfig:"SMTP_FROM"`
	UseSSL   bool          `yaml:"useSSL" envconfig:"SMTP_SSL" default:"true"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"SMTP_TIMEOUT" default:"10s"`
}

// Sender returns From, falling back to the login.
func (s SMTP) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

type CircuitBreaker struct {
	RecordLength     int           `yaml:"recordLength" envconfig:"CB_RECORD_LENGTH" default:"10"`
	Timeout          time.Duration `yaml:"timeout" envconfig:"CB_TIMEOUT" default:"30s"`
	Percentile       float64       `yaml:"percentile" envconfig:"CB_PERCENTILE" default:"0.5"`
	RecoveryRequests int           `yaml:"recoveryRequests" envconfig:"CB_RECOVERY_REQUESTS" default:"3"`
}

type Config struct {
	Kafka          kafka.Config
	SMTP           SMTP           `yaml:"smtp"`
	CircuitBreaker CircuitBreaker `yaml:"circuitBreaker"`
	Log            logger.Log     `yaml:"log"`
}

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
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
