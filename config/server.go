package config

import "time"

type Server struct {
	Addr            string        `envconfig:"ADDR" yaml:"addr"`
	Name            string        `envconfig:"NAME" yaml:"name"`
	StaticDir       string        `envconfig:"STATIC_DIR" yaml:"static_dir"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" yaml:"read_timeout"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

func defaultServer() Server {
	return Server{
		Addr:            ":28416",
		Name:            "slider-captcha",
		StaticDir:       "./static",
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

type Log struct {
	Level string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	JSON  bool   `envconfig:"LOG_JSON" yaml:"log_json"`
}

func defaultLog() Log {
	return Log{Level: "info", JSON: true}
}
