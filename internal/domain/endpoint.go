package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const defaultHTTPSPort = 443

// Endpoint is the parsed delivery target, derived once from configuration.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Path   string

	raw string
}

// ParseEndpoint parses a full endpoint URL (https://host[:port]/path).
// Only https is accepted since every exchange is TLS-authenticated.
// An empty path is normalized to "/".
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("%w: endpoint url is required", ErrInvalidEndpoint)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("%w: scheme must be https, got %q", ErrInvalidEndpoint, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, raw)
	}

	port := defaultHTTPSPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: invalid port %q", ErrInvalidEndpoint, p)
		}
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return Endpoint{
		Scheme: u.Scheme,
		Host:   host,
		Port:   port,
		Path:   path,
		raw:    raw,
	}, nil
}

// Address returns the host:port pair used to dial the endpoint.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL returns the absolute URL for a request path on this endpoint.
func (e Endpoint) URL(path string) string {
	if path == "" {
		path = "/"
	}
	return e.Scheme + "://" + e.Address() + path
}

// String returns the endpoint URL as configured.
func (e Endpoint) String() string {
	if e.raw != "" {
		return e.raw
	}
	return e.URL(e.Path)
}
