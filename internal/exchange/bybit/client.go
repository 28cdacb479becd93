package bybit

import (
	"strings"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond stays well below the public market data limit
const DefaultRequestsPerSecond = 10

// Client wraps the Bybit API client for public market data
type Client struct {
	httpClient *bybit_api.Client
	baseURL    string
	testnet    bool
	retry      RetryConfig
	limiter    *rate.Limiter
	logger     logrus.FieldLogger
}

// Config holds the configuration for the Bybit client. Market data endpoints are public, so
// the key pair is optional.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	BaseURL   string // overrides the environment URL when set
	Retry     *RetryConfig
	// RequestsPerSecond caps outgoing requests, DefaultRequestsPerSecond when zero
	RequestsPerSecond int
}

// NewClient creates a new Bybit client. A nil logger discards output.
func NewClient(config Config, logger logrus.FieldLogger) *Client {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}
	if config.BaseURL != "" {
		baseURL = strings.TrimRight(config.BaseURL, "/")
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		testnet:    config.Testnet,
		retry:      retry,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		logger:     logger.WithField("component", "bybit"),
	}
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	switch {
	case c.baseURL != bybit_api.MAINNET && c.baseURL != bybit_api.TESTNET:
		return "custom"
	case c.testnet:
		return "testnet"
	default:
		return "mainnet"
	}
}
