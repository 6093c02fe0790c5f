package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "COFRINHO_"

type Application struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	Currency      string        `koanf:"currency"`
	Auth          Auth          `koanf:"auth"`
	Storage       Storage       `koanf:"storage"`
	Notifications Notifications `koanf:"notifications"`
	Database      Database      `koanf:"db"`
}

type Auth struct {
	JwtSecret     string        `koanf:"jwtsecret"`
	TokenDuration time.Duration `koanf:"tokenduration"`
	// TrustUserHeader accepts the X-User-Id header set by an authenticating reverse proxy.
	TrustUserHeader bool `koanf:"trustuserheader"`
}

type Storage struct {
	// Backend is either "local" or "gcs".
	Backend       string `koanf:"backend"`
	Path          string `koanf:"path"`
	PublicBaseUrl string `koanf:"publicbaseurl"`
	Bucket        string `koanf:"bucket"`
}

type Notifications struct {
	InboxSize int  `koanf:"inboxsize"`
	Amqp      Amqp `koanf:"amqp"`
}

type Amqp struct {
	Url      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
	Queue    string `koanf:"queue"`
}

// Database points at Postgres. An empty MigrationsPath makes Migrate search upward for "migrations".
type Database struct {
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	User           string `koanf:"user"`
	Pass           string `koanf:"pass"`
	Name           string `koanf:"name"`
	Schema         string `koanf:"schema"`
	SslMode        string `koanf:"sslmode"`
	MaxConns       int32  `koanf:"maxconns"`
	MigrationsPath string `koanf:"migrationspath"`
}

func Defaults() Application {
	return Application{
		Host:     "http://localhost:8181",
		Port:     8181,
		Currency: "BRL",
		Auth: Auth{
			TokenDuration: 24 * time.Hour,
		},
		Storage: Storage{
			Backend:       "local",
			Path:          "storage",
			PublicBaseUrl: "http://localhost:8181/media",
		},
		Notifications: Notifications{
			InboxSize: 50,
			Amqp: Amqp{
				Exchange: "cofrinho",
				Queue:    "notifications",
			},
		},
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "cofrinho",
			Pass:     "",
			Name:     "cofrinho",
			Schema:   "cofrinho",
			SslMode:  "disable",
			MaxConns: 10,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// COFRINHO_DB_HOST -> db.host
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
