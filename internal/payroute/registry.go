// Package payroute holds the in-memory index from payment link tokens to
// their verification routing info. The durable source of truth is the
// payment_requests table; the registry is a derived cache on the hot
// verification path and is rebuilt from storage at startup.
package payroute

import (
	"sync"

	"paylink_backend/internal/models"
)

// RouteInfo is the subset of a payment request needed to answer an inbound
// proof without a database round trip.
type RouteInfo struct {
	UserID      string
	Amount      string
	Currency    string
	Network     string
	Description string
}

type Registry struct {
	mu     sync.RWMutex
	routes map[string]RouteInfo
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]RouteInfo)}
}

// Register inserts or overwrites the route for id. Idempotent under retries.
func (r *Registry) Register(id string, info RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[id] = info
}

// Lookup is safe to call concurrently with Register/Deregister. A miss is
// not an error; it means "link not found or expired".
func (r *Registry) Lookup(id string) (RouteInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.routes[id]
	return info, ok
}

func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routes, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// RouteSource abstracts the durable store for rebuilds.
type RouteSource interface {
	FindByStatus(status models.RequestStatus) ([]models.PaymentRequest, error)
}

// RebuildFromStorage repopulates the registry from all requests currently
// awaiting payment. Invoked once at process startup; this is the recovery
// path after a crash or restart.
func (r *Registry) RebuildFromStorage(src RouteSource) (int, error) {
	reqs, err := src.FindByStatus(models.RequestStatusProcessing)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range reqs {
		r.routes[req.ID] = RouteInfo{
			UserID:      req.UserID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Network:     req.Network,
			Description: req.Description,
		}
	}
	return len(reqs), nil
}
