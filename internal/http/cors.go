package httpserver

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"
	corsAllowHeaders = "Content-Type"
)

// AccessPolicy is a static allow-list of browser origins. Requests without an
// Origin header (curl, server-to-server) are always allowed.
type AccessPolicy struct {
	origins map[string]struct{}
}

// NewAccessPolicy builds a policy from the allowed origins.
func NewAccessPolicy(origins []string) *AccessPolicy {
	p := &AccessPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

// Allows reports whether a request declaring origin may proceed.
func (p *AccessPolicy) Allows(origin string) bool {
	if origin == "" {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// Middleware rejects disallowed origins through deny before any handler runs,
// sets CORS headers for allowed ones and answers preflight requests.
func (p *AccessPolicy) Middleware(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !p.Allows(origin) {
				deny(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				headers := r.Header.Get("Access-Control-Request-Headers")
				if headers == "" {
					headers = corsAllowHeaders
				}
				w.Header().Add("Vary", "Access-Control-Request-Headers")
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
