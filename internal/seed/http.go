package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movies-api/internal/domain"
)

const maxRemoteSeedBytes = 16 << 20 // 16 MiB

// ErrRemoteNotFound is returned when the seed URL answers 404.
var ErrRemoteNotFound = errors.New("seed: remote seed not found")

// HTTPSource downloads the seed JSON array from a URL.
type HTTPSource struct {
	endpoint *url.URL
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPSource validates rawURL and prepares a client with the given timeout.
func NewHTTPSource(rawURL string, timeout time.Duration, logger *zap.Logger) (*HTTPSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("parse seed url: unsupported scheme %q", parsed.Scheme)
	}
	return &HTTPSource{
		endpoint: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
		},
		logger: logger,
	}, nil
}

// Load implements Source.
func (s *HTTPSource) Load(ctx context.Context) ([]domain.Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch seed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrRemoteNotFound
	default:
		s.logger.Warn("seed: unexpected status", zap.Int("status", resp.StatusCode), zap.String("url", s.endpoint.Redacted()))
		return nil, fmt.Errorf("seed: upstream returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read seed body: %w", err)
	}
	if len(data) > maxRemoteSeedBytes {
		return nil, fmt.Errorf("seed: remote seed exceeds %d bytes", maxRemoteSeedBytes)
	}
	return Parse(data)
}
