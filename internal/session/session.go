package session

import (
	"context"
	"net/http"
	"time"

	"loginprobe/internal/endpoint"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

const (
	endpointKey = "endpoint"
	sessionTTL  = 12 * time.Hour
)

// Manager keeps per-browser console state. Nothing here outlives the
// process: the store is in memory.
type Manager struct {
	*scs.SessionManager
	catalog *endpoint.Catalog
}

func NewManager(catalog *endpoint.Catalog, secure bool) *Manager {
	return &Manager{SessionManager: newSessionManager(secure), catalog: catalog}
}

func newSessionManager(secure bool) *scs.SessionManager {
	manager := scs.New()
	manager.Store = memstore.New()
	manager.Lifetime = sessionTTL
	manager.Cookie.Name = "loginprobe_session"
	manager.Cookie.Path = "/"
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = secure
	return manager
}

// SelectedEndpoint falls back to the catalog default when nothing was picked
// or the stored value is no longer in the catalog.
func (m *Manager) SelectedEndpoint(ctx context.Context) endpoint.Endpoint {
	if v := m.GetString(ctx, endpointKey); v != "" {
		if e, ok := m.catalog.Lookup(v); ok {
			return e
		}
	}
	return m.catalog.Default()
}

func (m *Manager) SelectEndpoint(ctx context.Context, value string) (endpoint.Endpoint, error) {
	e, ok := m.catalog.Lookup(value)
	if !ok {
		return endpoint.Endpoint{}, endpoint.ErrUnknownEndpoint
	}
	m.Put(ctx, endpointKey, e.Value)
	return e, nil
}
