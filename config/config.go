package config

import (
	"errors"
	"flag"
	"io"
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultCoachUser = "coach"
	DefaultCoachPass = "change-me"
)

type Config struct {
	Addr        string
	DBUrl       string
	UploadsDir  string
	MaxUploadMB int64
	CoachUser   string
	CoachPass   string
	Debug       bool
	LogJSON     bool
}

// ParseFlags loads .env (if any) into the environment, then reads the
// command line and the COACH_USER / COACH_PASS variables.
func ParseFlags() (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return Parse(os.Args[1:], os.LookupEnv)
}

// Parse reads args and the coach credential. A default applies only when the
// variable is unset; an empty value is kept.
func Parse(args []string, lookupEnv func(string) (string, bool)) (cfg Config, err error) {
	fs := flag.NewFlagSet("boxer-intake", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	host := fs.String("host", "0.0.0.0", "listen host name")
	port := fs.Uint("port", 5000, "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", "intakes.sqlite3", "path to SQLite3 DB file")
	fs.StringVar(&cfg.UploadsDir, "uploads-dir", "uploads", "directory for uploaded files")
	fs.Int64Var(&cfg.MaxUploadMB, "max-upload-mb", 10, "maximum size of a submission, uploads included, in MB")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "log as JSON lines")
	if err = fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *port > 65535 {
		return Config{}, errors.New("invalid parameter -port: out of range")
	}
	if cfg.MaxUploadMB <= 0 {
		return Config{}, errors.New("invalid parameter -max-upload-mb: must be positive")
	}
	cfg.Addr = net.JoinHostPort(*host, strconv.Itoa(int(*port)))

	cfg.CoachUser = envOr(lookupEnv, "COACH_USER", DefaultCoachUser)
	cfg.CoachPass = envOr(lookupEnv, "COACH_PASS", DefaultCoachPass)

	return cfg, nil
}

func envOr(lookupEnv func(string) (string, bool), key, def string) string {
	if v, ok := lookupEnv(key); ok {
		return v
	}
	return def
}

// DefaultCredentials reports whether the coach credential was left at its
// built-in value.
func (cfg Config) DefaultCredentials() bool {
	return cfg.CoachUser == DefaultCoachUser || cfg.CoachPass == DefaultCoachPass
}

func (cfg Config) MaxUploadBytes() int64 {
	return cfg.MaxUploadMB << 20
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
