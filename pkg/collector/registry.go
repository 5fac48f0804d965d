package collector

import (
	"errors"
	"fmt"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

var (
	ErrDuplicateProvider = errors.New("provider already registered")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// Registry keeps collectors in registration order.
type Registry struct {
	collectors []Collector
	index      map[resource.Provider]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[resource.Provider]int)}
}

func (r *Registry) Register(c Collector) error {
	provider := c.Provider()
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	if _, found := r.index[provider]; found {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, provider)
	}

	r.index[provider] = len(r.collectors)
	r.collectors = append(r.collectors, c)

	return nil
}

func (r *Registry) Get(provider resource.Provider) (Collector, bool) {
	i, found := r.index[provider]
	if !found {
		return nil, false
	}

	return r.collectors[i], true
}

// Collectors returns the registered collectors in submission order.
func (r *Registry) Collectors() []Collector {
	return append([]Collector(nil), r.collectors...)
}

func (r *Registry) Len() int {
	return len(r.collectors)
}
