package middleware

import "github.com/aretw0/stagehand/pkg/ports"

// Middleware allows wrapping a DescriptorStore to add behavior.
type Middleware func(ports.DescriptorStore) ports.DescriptorStore

// Chain wraps store with mws. The first middleware is the outermost one.
func Chain(store ports.DescriptorStore, mws ...Middleware) ports.DescriptorStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
