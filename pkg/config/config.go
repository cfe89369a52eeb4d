// Package config resolves controller settings from defaults, a .env file and
// the environment. Command line flags are applied on top by cmd/controller.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"sdn-controller/pkg/db"
	"sdn-controller/pkg/topology"
)

type Config struct {
	Addr       string
	Token      string
	JWTSecret  string
	TLSCert    string
	TLSKey     string
	ClientCA   string
	Journal    string // memory | sqlite | consul
	SQLitePath string
	ConsulAddr string
	MaxPaths   int
	LogDev     bool

	// DefaultCapacity applies to links added over the API without a capacity.
	DefaultCapacity int

	// AuthDB enables operator accounts stored in MySQL.
	AuthDB bool
	MySQL  db.Options
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		Journal:         "memory",
		SQLitePath:      "/var/lib/sdn-controller/events.db",
		ConsulAddr:      "127.0.0.1:8500",
		MaxPaths:        topology.DefaultMaxPaths,
		DefaultCapacity: topology.DefaultCapacity,
		MySQL: db.Options{
			Host: "127.0.0.1",
			Port: "3306",
			User: "root",
			Name: "sdn_controller",
		},
	}
}

// Load returns Default overlaid with envFile (if present) and the process
// environment. Variables already set in the environment win over the file.
// The result is not validated; callers apply their own overrides first and
// then call Validate.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}
	c := Default()
	c.Addr = getenv("SDN_ADDR", c.Addr)
	c.Token = getenv("SDN_TOKEN", c.Token)
	c.JWTSecret = getenv("JWT_SECRET", c.JWTSecret)
	c.TLSCert = getenv("SDN_TLS_CERT", c.TLSCert)
	c.TLSKey = getenv("SDN_TLS_KEY", c.TLSKey)
	c.ClientCA = getenv("SDN_CLIENT_CA", c.ClientCA)
	c.Journal = getenv("SDN_JOURNAL", c.Journal)
	c.SQLitePath = getenv("SDN_SQLITE_PATH", c.SQLitePath)
	c.ConsulAddr = getenv("SDN_CONSUL_ADDR", c.ConsulAddr)
	c.MySQL.DSN = getenv("MYSQL_DSN", c.MySQL.DSN)
	c.MySQL.Host = getenv("MYSQL_HOST", c.MySQL.Host)
	c.MySQL.Port = getenv("MYSQL_PORT", c.MySQL.Port)
	c.MySQL.User = getenv("MYSQL_USER", c.MySQL.User)
	c.MySQL.Password = getenv("MYSQL_PASS", c.MySQL.Password)
	c.MySQL.Name = getenv("MYSQL_DB", c.MySQL.Name)

	var err error
	if c.MaxPaths, err = getint("SDN_MAX_PATHS", c.MaxPaths); err != nil {
		return Config{}, err
	}
	if c.DefaultCapacity, err = getint("SDN_DEFAULT_CAPACITY", c.DefaultCapacity); err != nil {
		return Config{}, err
	}
	if c.LogDev, err = getbool("SDN_LOG_DEV", c.LogDev); err != nil {
		return Config{}, err
	}
	if c.AuthDB, err = getbool("SDN_AUTH_DB", c.AuthDB); err != nil {
		return Config{}, err
	}
	if c.MySQL.DSN != "" {
		c.AuthDB = true
	}
	return c, nil
}

// Validate rejects settings the controller cannot start with.
func (c Config) Validate() error {
	switch c.Journal {
	case "memory", "sqlite", "consul":
	default:
		return fmt.Errorf("unsupported journal backend: %s", c.Journal)
	}
	if c.DefaultCapacity < 0 {
		return fmt.Errorf("default capacity must not be negative: %d", c.DefaultCapacity)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getbool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
