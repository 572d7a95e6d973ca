package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poliverai/poliver/adapter"
	adapterredis "github.com/poliverai/poliver/adapter/redis"
	"github.com/poliverai/poliver/adapter/webhook"
	"github.com/poliverai/poliver/api"
	"github.com/poliverai/poliver/bus"
	"github.com/poliverai/poliver/checkout"
	"github.com/poliverai/poliver/cli/config"
	"github.com/poliverai/poliver/log"
	"github.com/poliverai/poliver/metrics"
)

// defaultConfigPath is tried when --config is not given. A missing default
// config is not an error; a missing explicit one is.
const defaultConfigPath = "poliver.yaml"

// env is the shared command environment built from config and flags.
type env struct {
	cfg       *config.Config
	logger    *log.Logger
	bus       *bus.Bus
	api       *api.Client
	collector *metrics.Collector

	// detach tears down the adapter bridge; always safe to call.
	detach func()
}

// newEnv loads config, applies flag overrides, and wires the API client,
// notification bus, and optional downstream adapter.
func newEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger := log.NewLogger("poliver")
	if c.Bool("quiet") {
		logger = logger.WithOutput(io.Discard)
	}

	baseURL := cfg.API.BaseURL
	if v := c.String("base-url"); v != "" {
		baseURL = v
	}
	token := cfg.API.Token
	if v := c.String("token"); v != "" {
		token = v
	}
	if baseURL == "" {
		return nil, cli.Exit("no service base URL: set api.base_url in poliver.yaml or pass --base-url", 1)
	}

	apiClient, err := api.New(api.Config{
		BaseURL: baseURL,
		Token:   token,
		Timeout: cfg.API.Timeout.Duration,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:       cfg,
		logger:    logger,
		bus:       bus.New(),
		api:       apiClient,
		collector: metrics.NewCollector(),
		detach:    func() {},
	}

	if err := e.attachAdapter(); err != nil {
		return nil, err
	}
	return e, nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err != nil {
		return &config.Config{}, nil
	}
	return config.Load(defaultConfigPath)
}

// attachAdapter bridges notification topics to the configured downstream
// adapter, if any.
func (e *env) attachAdapter() error {
	var (
		a   adapter.Adapter
		err error
	)
	retries := func() int {
		if e.cfg.Adapter.Retries != nil {
			return *e.cfg.Adapter.Retries
		}
		return adapterredis.DefaultRetries
	}

	switch e.cfg.Adapter.Type {
	case "":
		return nil
	case "redis":
		a, err = adapterredis.New(adapterredis.Config{
			URL:     e.cfg.Adapter.URL,
			Channel: e.cfg.Adapter.Channel,
			Timeout: e.cfg.Adapter.Timeout.Duration,
			Retries: retries(),
		})
	case "webhook":
		a, err = webhook.New(webhook.Config{
			URL:     e.cfg.Adapter.URL,
			Headers: e.cfg.Adapter.Headers,
			Timeout: e.cfg.Adapter.Timeout.Duration,
			Retries: retries(),
		})
	default:
		return fmt.Errorf("unknown adapter type %q (must be redis or webhook)", e.cfg.Adapter.Type)
	}
	if err != nil {
		return err
	}

	topics := []string{
		bus.TopicPaymentResult,
		bus.TopicRefreshUser,
		bus.TopicRefreshTransactions,
		bus.TopicRefreshReports,
	}
	detachBridge := bus.Forward(e.bus, topics, a, e.logger)
	e.detach = func() {
		detachBridge()
		if err := a.Close(); err != nil {
			e.logger.Warn("adapter close failed", map[string]any{"error": err.Error()})
		}
	}
	return nil
}

// checkoutStore builds the configured pending-checkout slot backend.
func (e *env) checkoutStore() (checkout.Store, error) {
	switch e.cfg.Checkout.Store {
	case "", "file":
		path := e.cfg.Checkout.Path
		if path == "" {
			var err error
			path, err = checkout.DefaultStorePath()
			if err != nil {
				return nil, err
			}
		}
		return checkout.NewFileStore(path), nil
	case "redis":
		if e.cfg.Checkout.RedisURL == "" {
			return nil, fmt.Errorf("checkout.redis_url is required for the redis store")
		}
		return checkout.NewRedisStore(e.cfg.Checkout.RedisURL)
	default:
		return nil, fmt.Errorf("unknown checkout store %q (must be file or redis)", e.cfg.Checkout.Store)
	}
}

// checkoutManager builds the manager over the configured store.
func (e *env) checkoutManager() (*checkout.Manager, error) {
	store, err := e.checkoutStore()
	if err != nil {
		return nil, err
	}
	return checkout.NewManager(checkout.Config{
		Store:      store,
		API:        e.api,
		Bus:        e.bus,
		Logger:     e.logger,
		Metrics:    e.collector,
		SuccessURL: e.cfg.Checkout.SuccessURL,
		CancelURL:  e.cfg.Checkout.CancelURL,
	}), nil
}
