package config

import (
	"fmt"
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
	Server    Server    `koanf:"server"`
	Database  Database  `koanf:"db"`
	Auth      Auth      `koanf:"auth"`
	Timesheet Timesheet `koanf:"timesheet"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Auth struct {
	Secret     string `koanf:"secret"`
	TTLMinutes int    `koanf:"ttlminutes"`
}

type Timesheet struct {
	// WeekStartDay is the first day of the timesheet week; every entry is
	// grouped under the date of this weekday.
	WeekStartDay string `koanf:"weekstartday"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Port: 8180,
		},
		Auth: Auth{
			Secret:     "",
			TTLMinutes: 480,
		},
		Timesheet: Timesheet{
			WeekStartDay: "sunday",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "apontei",
			Pass:   "",
			Name:   "apontei",
			Schema: "apontei",
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
		Prefix: "APONTEI_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "APONTEI_")), "_", ".")
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

	if _, err := app.Timesheet.WeekStart(); err != nil {
		return Application{}, err
	}

	return app, nil
}

// TokenTTL returns the configured JWT lifetime.
func (a Auth) TokenTTL() time.Duration {
	return time.Duration(a.TTLMinutes) * time.Minute
}

// WeekStart resolves the configured week start day name to a weekday.
func (t Timesheet) WeekStart() (time.Weekday, error) {
	switch strings.ToLower(t.WeekStartDay) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("unsupported week start day: %q", t.WeekStartDay)
	}
}
