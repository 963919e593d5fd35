package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// Manager hands out outbound proxies in round-robin order.
type Manager struct {
	proxies    []*url.URL
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the configured proxy URLs. An empty list means direct connections.
func NewManager(rawProxies []string) (*Manager, error) {
	m := &Manager{}
	for _, raw := range rawProxies {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// Next returns the next proxy, rotating sequentially, or nil when none is configured.
func (m *Manager) Next() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// Len reports how many proxies are configured.
func (m *Manager) Len() int {
	return len(m.proxies)
}

// ProxyFunc adapts the manager to http.Transport.Proxy. With no proxies configured it
// defers to fallback, usually http.ProxyFromEnvironment.
func (m *Manager) ProxyFunc(fallback func(*http.Request) (*url.URL, error)) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		if p := m.Next(); p != nil {
			return p, nil
		}
		if fallback == nil {
			return nil, nil
		}
		return fallback(req)
	}
}
