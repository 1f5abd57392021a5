package main

import (
	"net"
	"net/http"
	"strings"
)

// forwardedFor replaces r.RemoteAddr with the client address reported by the
// trusted reverse proxies. Each of the hops proxies appends the address it
// received the request from, so the client is the entry hops positions from
// the right; anything further left is client supplied and ignored. With zero
// hops the socket peer is kept and X-Forwarded-For is never consulted.
func forwardedFor(hops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hops <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedClient(r.Header.Values("X-Forwarded-For"), hops); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(headers []string, hops int) string {
	var entries []string
	for _, h := range headers {
		for _, part := range strings.Split(h, ",") {
			entries = append(entries, strings.TrimSpace(part))
		}
	}
	idx := len(entries) - hops
	if idx < 0 {
		return ""
	}
	ip := net.ParseIP(entries[idx])
	if ip == nil {
		return ""
	}
	return ip.String()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
