package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/benbeisheim/quadchess-backend/internal/model"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Addr                string
	AllowOrigins        string
	DataDir             string
	LogLevel            string
	LogFormat           string
	CornerSize          int
	CheckmateEndsGame   bool
	StalemateEliminates bool
}

// Load reads flags from args, falling back to QUADCHESS_* environment
// variables and then to built-in defaults.
func Load(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("quadchess", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getenv("QUADCHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", getenv("QUADCHESS_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.DataDir, "data-dir", getenv("QUADCHESS_DATA_DIR", ""), "badger directory for finished games (empty keeps them in memory)")
	fs.StringVar(&cfg.LogLevel, "log-level", getenv("QUADCHESS_LOG_LEVEL", "info"), "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", getenv("QUADCHESS_LOG_FORMAT", "text"), "log format: text or json")
	fs.IntVar(&cfg.CornerSize, "corner-size", getenvInt("QUADCHESS_CORNER_SIZE", 3), "side of the square cut from each board corner")
	fs.BoolVar(&cfg.CheckmateEndsGame, "checkmate-ends-game", getenb("QUADCHESS_CHECKMATE_ENDS_GAME", false), "end the game at the first checkmate")
	fs.BoolVar(&cfg.StalemateEliminates, "stalemate-eliminates", getenb("QUADCHESS_STALEMATE_ELIMINATES", false), "eliminate a stalemated color instead of skipping it")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.CornerSize < 0 || c.CornerSize > 3 {
		return fmt.Errorf("corner size must be between 0 and 3, got %d", c.CornerSize)
	}
	origins := c.Origins()
	if len(origins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}
	for _, o := range origins {
		if o == "*" {
			return fmt.Errorf("wildcard origin is not allowed with credentialed CORS, list origins explicitly")
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Origins splits AllowOrigins into trimmed, non-empty entries.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Rules returns the engine rules every new game is created with.
func (c Config) Rules() model.Rules {
	rules := model.DefaultRules()
	rules.Corners = model.SquareCorners(c.CornerSize)
	rules.CheckmateEndsGame = c.CheckmateEndsGame
	rules.StalemateEliminates = c.StalemateEliminates
	return rules
}

// ConfigureLogger applies level and format to logger.
func (c Config) ConfigureLogger(logger *log.Logger) error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
