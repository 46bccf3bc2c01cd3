// Package geo resolves a visitor's city for the boot greeting.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// Unknown is returned whenever the city cannot be resolved.
	Unknown = "UNKNOWN"
	// DefaultEndpoint is an ipapi-compatible lookup service.
	DefaultEndpoint = "https://ipapi.co"
	// DefaultTTL is how long a resolved city is reused.
	DefaultTTL = time.Hour
)

type ipapiResponse struct {
	City   string `json:"city"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Locator looks up cities by IP, caching results per address.
type Locator struct {
	endpoint string
	http     *http.Client
	cache    *gocache.Cache
	logger   *zap.Logger
}

func NewLocator(endpoint string, ttl time.Duration, logger *zap.Logger) *Locator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 5 * time.Second},
		cache:    gocache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// City returns the uppercased city for ip, or Unknown. Loopback and private
// addresses resolve the server's own public address instead.
func (l *Locator) City(ctx context.Context, ip string) string {
	key := lookupKey(ip)
	if v, ok := l.cache.Get(key); ok {
		if city, ok := v.(string); ok {
			return city
		}
	}

	city, err := l.fetch(ctx, key)
	if err != nil {
		l.logger.Debug("geolocation failed", zap.Error(err))
		return Unknown
	}
	l.cache.SetDefault(key, city)
	return city
}

func lookupKey(ip string) string {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return ""
	}
	return addr.String()
}

func (l *Locator) fetch(ctx context.Context, ip string) (string, error) {
	u := l.endpoint + "/json/"
	if ip != "" {
		u = l.endpoint + "/" + url.PathEscape(ip) + "/json/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "crtfolio/1.0")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geolocation status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding geolocation: %w", err)
	}
	if body.Error {
		return "", fmt.Errorf("geolocation: %s", body.Reason)
	}
	if strings.TrimSpace(body.City) == "" {
		return Unknown, nil
	}
	return strings.ToUpper(strings.TrimSpace(body.City)), nil
}

// WhereAmI asks a crtfolio server for the caller's city.
func WhereAmI(ctx context.Context, client *http.Client, serverURL string) string {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(serverURL, "/")+"/whereami", nil)
	if err != nil {
		return Unknown
	}
	resp, err := client.Do(req)
	if err != nil {
		return Unknown
	}
	defer resp.Body.Close()

	var body struct {
		City string `json:"city"`
	}
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&body) != nil || body.City == "" {
		return Unknown
	}
	return body.City
}
