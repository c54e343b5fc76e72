package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

type HTTP struct {
	Port int `yaml:"port"`
}

type Storage struct {
	Backend         string `yaml:"backend"`
	OrderNumberSeed int64  `yaml:"order_number_seed"`
}

type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Pass     string `yaml:"password"`
	Name     string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	if d.MaxConns > 0 {
		u.RawQuery += "&pool_max_conns=" + strconv.Itoa(d.MaxConns)
	}
	return u.String()
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type MQ struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Pass     string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

// Enabled reports whether lifecycle events should be relayed to RabbitMQ.
func (m MQ) Enabled() bool { return m.Host != "" }

func (m MQ) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(m.User, m.Pass),
		Host:   fmt.Sprintf("%s:%d", m.Host, m.Port),
		Path:   "/" + strings.TrimPrefix(m.VHost, "/"),
	}
	return u.String()
}

type Stream struct {
	KeepAlive time.Duration `yaml:"keep_alive"`
	Buffer    int           `yaml:"buffer"`
}

type Log struct {
	Level string `yaml:"level"`
}

type App struct {
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Database DB      `yaml:"database"`
	Mongo    Mongo   `yaml:"mongo"`
	Rabbit   MQ      `yaml:"rabbitmq"`
	Stream   Stream  `yaml:"stream"`
	Log      Log     `yaml:"log"`
}

func Defaults() App {
	return App{
		HTTP:     HTTP{Port: 3000},
		Storage:  Storage{OrderNumberSeed: 101},
		Database: DB{Port: 5432, SSLMode: "disable", MaxConns: 10},
		Mongo:    Mongo{Database: "dineflow"},
		Rabbit:   MQ{Port: 5672, VHost: "/", Exchange: "notifications_fanout", Queue: "notifications.q"},
		Stream:   Stream{KeepAlive: 30 * time.Second, Buffer: 16},
		Log:      Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and the process environment, in that order.
func Load(path string) (App, error) {
	a := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return App{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &a); err != nil {
			return App{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&a)
	if err := a.Validate(); err != nil {
		return App{}, err
	}
	return a, nil
}

func (a *App) Validate() error {
	if a.Storage.Backend == "" {
		a.Storage.Backend = BackendMemory
		if a.Mongo.URI != "" {
			a.Storage.Backend = BackendMongo
		}
	}
	switch a.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if a.Database.Host == "" || a.Database.User == "" || a.Database.Name == "" {
			return errors.New("invalid config: postgres backend needs database host, user and name")
		}
	case BackendMongo:
		if a.Mongo.URI == "" {
			return errors.New("invalid config: mongo backend needs mongo uri")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage backend %q", a.Storage.Backend)
	}
	if a.HTTP.Port <= 0 || a.HTTP.Port > 65535 {
		return fmt.Errorf("invalid config: http port %d out of range", a.HTTP.Port)
	}
	if a.Storage.OrderNumberSeed < 1 {
		return errors.New("invalid config: order number seed must be positive")
	}
	if a.Stream.KeepAlive <= 0 {
		return errors.New("invalid config: stream keep_alive must be positive")
	}
	if a.Stream.Buffer <= 0 {
		a.Stream.Buffer = 1
	}
	return nil
}

func applyEnv(a *App) {
	setInt(&a.HTTP.Port, "PORT")
	setStr(&a.Storage.Backend, "STORAGE_BACKEND")
	setStr(&a.Database.Host, "DATABASE_HOST")
	setInt(&a.Database.Port, "DATABASE_PORT")
	setStr(&a.Database.User, "DATABASE_USER")
	setStr(&a.Database.Pass, "DATABASE_PASSWORD")
	setStr(&a.Database.Name, "DATABASE_NAME")
	setStr(&a.Mongo.URI, "MONGODB_URI")
	setStr(&a.Mongo.Database, "MONGODB_DATABASE")
	setStr(&a.Rabbit.Host, "RABBITMQ_HOST")
	setInt(&a.Rabbit.Port, "RABBITMQ_PORT")
	setStr(&a.Rabbit.User, "RABBITMQ_USER")
	setStr(&a.Rabbit.Pass, "RABBITMQ_PASSWORD")
	setStr(&a.Rabbit.VHost, "RABBITMQ_VHOST")
	setStr(&a.Log.Level, "LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// FindConfig returns the first config file that exists, or fs.ErrNotExist.
func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
