package config

import (
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "QSURVEY_"

type Config struct {
	Addr  string `yaml:"addr"`
	DBUrl string `yaml:"db_url"`
	// BackendURL is the remote survey service. Empty means demo data.
	BackendURL string `yaml:"backend_url"`
	// PublicURL prefixes the submit endpoint baked into local surveys.
	PublicURL      string        `yaml:"public_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RatingScale    int           `yaml:"rating_scale"`
	// Recipients is the audience list sent along when a survey is
	// materialized by the backend.
	Recipients []string `yaml:"recipients"`
	Debug      bool     `yaml:"debug"`
}

func Default() Config {
	return Config{
		Addr:           "0.0.0.0:8080",
		DBUrl:          "qsurvey.sqlite",
		RequestTimeout: 10 * time.Second,
		RatingScale:    5,
	}
}

// Load reads a YAML file over the defaults. A missing path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "config.read")
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, errors.Wrap(err, "config.parse")
}

// ApplyEnv overrides cfg from QSURVEY_* variables, after loading .env if
// one is present.
func (cfg *Config) ApplyEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "config.dotenv")
	}

	if v, ok := lookup("ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := lookup("DB_URL"); ok {
		cfg.DBUrl = v
	}
	if v, ok := lookup("BACKEND_URL"); ok {
		cfg.BackendURL = v
	}
	if v, ok := lookup("PUBLIC_URL"); ok {
		cfg.PublicURL = v
	}
	if v, ok := lookup("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "config.env.request_timeout")
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup("RATING_SCALE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "config.env.rating_scale")
		}
		cfg.RatingScale = n
	}
	if v, ok := lookup("RECIPIENTS"); ok {
		cfg.Recipients = splitList(v)
	}
	if v, ok := lookup("DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "config.env.debug")
		}
		cfg.Debug = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return v, ok && v != ""
}

// Flags holds the command line overrides. Only flags the user actually set
// are applied.
type Flags struct {
	fs             *pflag.FlagSet
	host           string
	port           uint
	dbURL          string
	backendURL     string
	publicURL      string
	requestTimeout time.Duration
	ratingScale    int
	recipients     []string
	debug          bool
}

func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.host, "host", "0.0.0.0", "listen host name")
	fs.UintVar(&f.port, "port", 8080, "listen port number")
	fs.StringVar(&f.dbURL, "db-url", "qsurvey.sqlite", "SQLite3 file path or postgres:// URL")
	fs.StringVar(&f.backendURL, "backend-url", "", "remote survey service base URL (empty: demo data)")
	fs.StringVar(&f.publicURL, "public-url", "", "base URL survey pages submit answers to")
	fs.DurationVar(&f.requestTimeout, "request-timeout", 10*time.Second, "remote request timeout")
	fs.IntVar(&f.ratingScale, "rating-scale", 5, "points of an unlabelled rating question")
	fs.StringSliceVar(&f.recipients, "recipient", nil, "audience address sent to the backend on publish (repeatable)")
	fs.BoolVar(&f.debug, "debug", false, "log at DEBUG level")
	return f
}

func (f *Flags) Apply(cfg *Config) {
	if f.fs.Changed("host") || f.fs.Changed("port") {
		host, port, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			host, port = "0.0.0.0", "8080"
		}
		if f.fs.Changed("host") {
			host = f.host
		}
		if f.fs.Changed("port") {
			port = strconv.Itoa(int(f.port))
		}
		cfg.Addr = net.JoinHostPort(host, port)
	}
	if f.fs.Changed("db-url") {
		cfg.DBUrl = f.dbURL
	}
	if f.fs.Changed("backend-url") {
		cfg.BackendURL = f.backendURL
	}
	if f.fs.Changed("public-url") {
		cfg.PublicURL = f.publicURL
	}
	if f.fs.Changed("request-timeout") {
		cfg.RequestTimeout = f.requestTimeout
	}
	if f.fs.Changed("rating-scale") {
		cfg.RatingScale = f.ratingScale
	}
	if f.fs.Changed("recipient") {
		cfg.Recipients = f.recipients
	}
	if f.fs.Changed("debug") {
		cfg.Debug = f.debug
	}
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

// SubmitBaseURL is where generated surveys post answers.
func (cfg Config) SubmitBaseURL() string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	return cfg.Url()
}
