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

type Application struct {
	Addr     string   `koanf:"addr"`
	Database Database `koanf:"db"`
	Sync     Sync     `koanf:"sync"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Sync struct {
	RetryMaxAttempts int           `koanf:"retrymaxattempts"`
	RetryBaseDelay   time.Duration `koanf:"retrybasedelay"`
	Scheduler        Scheduler     `koanf:"scheduler"`
}

type Scheduler struct {
	Enabled bool   `koanf:"enabled"`
	Cron    string `koanf:"cron"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Addr: ":8181",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "alarmo",
			Pass:   "",
			Name:   "alarmo",
			Schema: "alarmo",
		},
		Sync: Sync{
			RetryMaxAttempts: 3,
			RetryBaseDelay:   time.Second,
			Scheduler: Scheduler{
				Enabled: true,
				Cron:    "@every 5m",
			},
		},
	}, "koanf"), nil)
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
		Prefix: "ALARMO_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ALARMO_")), "_", ".")
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
