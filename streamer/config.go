package streamer

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/lyrebirdhq/clientbase/errs"
)

// DefaultReconnectInterval is the delay between reconnection attempts when
// the configuration does not set one.
const DefaultReconnectInterval = 5 * time.Second

// Config describes the server endpoint. Exactly one of URL, Address or
// Host must be supplied; anything else is a construction-time failure.
type Config struct {
	// URL is the full server URL. When set, Address, Host, Port and SSL
	// are ignored.
	URL string

	// Address is the server as "host" or "host:port".
	Address string

	// Host and Port compose the server address when Address is empty.
	Host string
	Port int

	// SSL selects the wss scheme when composing from Address or Host.
	SSL bool

	// Route is an optional path appended to the composed URL.
	Route string

	// ReconnectInterval is the fixed delay before a reconnection attempt.
	// Zero means DefaultReconnectInterval.
	ReconnectInterval time.Duration
}

// Validate checks that a connection target can be composed.
func (c Config) Validate() error {
	_, err := c.serverURL()
	return err
}

// serverURL composes the connection target from the config.
func (c Config) serverURL() (string, error) {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return "", fmt.Errorf("%w: invalid server URL %q: %v", errs.ErrParameter, c.URL, err)
		}
		if c.Route != "" {
			u.Path = path.Join(u.Path, c.Route)
		}
		return u.String(), nil
	}

	host := c.Address
	if host == "" && c.Host != "" {
		host = c.Host
		if c.Port != 0 {
			host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		}
	}
	if host == "" {
		return "", fmt.Errorf("%w: missing parameter in server config: address", errs.ErrParameter)
	}

	scheme := "ws"
	if c.SSL {
		scheme = "wss"
	}

	u := url.URL{Scheme: scheme, Host: host}
	if c.Route != "" {
		u.Path = "/" + strings.TrimPrefix(c.Route, "/")
	}
	return u.String(), nil
}

// reconnectInterval returns the configured interval or the default.
func (c Config) reconnectInterval() time.Duration {
	if c.ReconnectInterval > 0 {
		return c.ReconnectInterval
	}
	return DefaultReconnectInterval
}
