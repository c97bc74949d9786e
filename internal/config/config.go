package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"findash/pkg/assistant"
	"findash/pkg/confkit"
	marketpkg "findash/pkg/market"
)

// Defaults applied to sections left out of the main config file.
const (
	defaultTTLShort        = 10
	defaultTTLMedium       = 60
	defaultTTLLong         = 300
	defaultRefreshInterval = 30 * time.Second
	defaultInitialMarket   = "crypto"
	defaultCallTimeout     = 10 * time.Second
	defaultMonitorInterval = 2 * time.Minute
	defaultMonitorTimeout  = 30 * time.Second
)

type CacheTTL struct {
	Short  int `json:",default=10"` // seconds
	Medium int `json:",default=60"`
	Long   int `json:",default=300"`
}

// SessionConf tunes the dashboard session.
type SessionConf struct {
	RefreshInterval time.Duration `json:",default=30s"`
	InitialMarket   string        `json:",default=crypto"`

	// CallTimeout bounds one upstream call when sizing a pass started by a request.
	CallTimeout time.Duration `json:",default=10s"`

	// KiteAccessToken seeds the Indian-stocks session, normally set via ${KITE_ACCESS_TOKEN}.
	KiteAccessToken string `json:",optional"`
}

// MonitorConf drives the headless monitor binary.
type MonitorConf struct {
	Markets  []string      `json:",optional"`
	Interval time.Duration `json:",default=2m"`
	Timeout  time.Duration `json:",default=30s"`

	// JournalDir, when set, receives one JSON file per pass.
	JournalDir string `json:",optional"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod
	Env     string          `json:",default=test"`
	Redis   redis.RedisConf `json:",optional"`
	TTL     CacheTTL        `json:",optional"`
	Session SessionConf     `json:",optional"`
	Monitor MonitorConf     `json:",optional"`

	Market    confkit.Section[marketpkg.Config] `json:",optional"`
	Assistant confkit.Section[assistant.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Host) != ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)
	cfg.FillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FillDefaults sets zero-valued tunables to their defaults. go-zero leaves an
// omitted optional section zeroed, so its default tags never apply.
func (c *Config) FillDefaults() {
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "test"
	}
	if c.TTL.Short == 0 {
		c.TTL.Short = defaultTTLShort
	}
	if c.TTL.Medium == 0 {
		c.TTL.Medium = defaultTTLMedium
	}
	if c.TTL.Long == 0 {
		c.TTL.Long = defaultTTLLong
	}
	if c.Session.RefreshInterval == 0 {
		c.Session.RefreshInterval = defaultRefreshInterval
	}
	if strings.TrimSpace(c.Session.InitialMarket) == "" {
		c.Session.InitialMarket = defaultInitialMarket
	}
	if c.Session.CallTimeout == 0 {
		c.Session.CallTimeout = defaultCallTimeout
	}
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = defaultMonitorInterval
	}
	if c.Monitor.Timeout == 0 {
		c.Monitor.Timeout = defaultMonitorTimeout
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	return c.validateTTL()
}

func (c *Config) validateSession() error {
	if c.Session.RefreshInterval <= 0 {
		return errors.New("config: session.refreshInterval must be positive")
	}
	if c.Session.CallTimeout < 0 {
		return errors.New("config: session.callTimeout cannot be negative")
	}
	if _, err := marketpkg.ParseMarket(c.Session.InitialMarket); err != nil {
		return fmt.Errorf("config: session.initialMarket: %w", err)
	}
	return nil
}

func (c *Config) validateMonitor() error {
	for _, m := range c.Monitor.Markets {
		if _, err := marketpkg.ParseMarket(m); err != nil {
			return fmt.Errorf("config: monitor.markets: %w", err)
		}
	}
	if c.Monitor.Interval < 0 || c.Monitor.Timeout < 0 {
		return errors.New("config: monitor durations cannot be negative")
	}
	return nil
}

func (c *Config) validateTTL() error {
	if c.TTL.Short <= 0 {
		return errors.New("config: ttl.short must be positive")
	}
	if c.TTL.Medium <= 0 {
		return errors.New("config: ttl.medium must be positive")
	}
	if c.TTL.Long <= 0 {
		return errors.New("config: ttl.long must be positive")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	base := c.baseDir

	if err := c.Market.Hydrate(base, marketpkg.LoadConfig); err != nil {
		return fmt.Errorf("load market config: %w", err)
	}
	if err := c.Assistant.Hydrate(base, assistant.LoadConfig); err != nil {
		return fmt.Errorf("load assistant config: %w", err)
	}
	return nil
}

// InitialMarket returns the parsed session market.
func (c *Config) InitialMarket() marketpkg.Market {
	m, err := marketpkg.ParseMarket(c.Session.InitialMarket)
	if err != nil {
		return marketpkg.Crypto
	}
	return m
}

// MonitorMarkets returns the markets the monitor cycles through, defaulting to all.
func (c *Config) MonitorMarkets() []marketpkg.Market {
	if len(c.Monitor.Markets) == 0 {
		return marketpkg.Markets()
	}
	out := make([]marketpkg.Market, 0, len(c.Monitor.Markets))
	for _, raw := range c.Monitor.Markets {
		if m, err := marketpkg.ParseMarket(raw); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
