package modelapi

import (
	"context"
	"fmt"
	"sync"
)

// CallFunc is the downstream handler a middleware delegates to.
type CallFunc func(ctx context.Context, args CallArguments, modelType ModelType) (any, error)

// Middleware wraps a blocking provider call. It receives the call description
// and a next function that invokes the downstream handler.
type Middleware func(ctx context.Context, provider string, args CallArguments, modelType ModelType, next CallFunc) (any, error)

// AsyncCallFunc is the downstream handler for the suspending path.
type AsyncCallFunc func(ctx context.Context, args CallArguments, modelType ModelType) <-chan CallResult

// AsyncMiddleware wraps an asynchronous provider call.
type AsyncMiddleware func(ctx context.Context, provider string, args CallArguments, modelType ModelType, next AsyncCallFunc) <-chan CallResult

// Registry routes calls to named provider clients and applies middleware.
type Registry struct {
	mu              sync.RWMutex
	clients         map[string]ModelClient
	defaultProvider string
	middleware      []Middleware
	asyncMW         []AsyncMiddleware
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClient registers a provider client under its Provider() name.
func WithClient(client ModelClient) RegistryOption {
	return func(r *Registry) {
		r.clients[client.Provider()] = client
	}
}

// WithDefaultProvider sets the provider used when a call names none.
func WithDefaultProvider(name string) RegistryOption {
	return func(r *Registry) {
		r.defaultProvider = name
	}
}

// WithMiddleware adds middleware to the blocking call path.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(r *Registry) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithAsyncMiddleware adds middleware to the asynchronous call path.
func WithAsyncMiddleware(mw ...AsyncMiddleware) RegistryOption {
	return func(r *Registry) {
		r.asyncMW = append(r.asyncMW, mw...)
	}
}

// NewRegistry creates a Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		clients: make(map[string]ModelClient),
	}
	for _, opt := range opts {
		opt(r)
	}
	// If no default and exactly one client, use it.
	if r.defaultProvider == "" && len(r.clients) == 1 {
		for name := range r.clients {
			r.defaultProvider = name
		}
	}
	return r
}

// Register adds a provider client to the registry.
func (r *Registry) Register(client ModelClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Provider()] = client
	if r.defaultProvider == "" {
		r.defaultProvider = client.Provider()
	}
}

// resolve returns the client for the given provider name, falling back to the
// default provider when name is empty.
func (r *Registry) resolve(name string) (ModelClient, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultProvider
	}
	if name == "" {
		return nil, "", &ConfigurationError{ClientError: ClientError{
			Message: "no provider specified and no default provider configured",
		}}
	}
	client, ok := r.clients[name]
	if !ok {
		return nil, "", &ConfigurationError{ClientError: ClientError{
			Message: fmt.Sprintf("provider %q is not registered", name),
		}}
	}
	return client, name, nil
}

// Call routes a blocking call through middleware to the named provider.
// An empty provider selects the default.
func (r *Registry) Call(ctx context.Context, provider string, args CallArguments, modelType ModelType) (any, error) {
	client, name, err := r.resolve(provider)
	if err != nil {
		return nil, err
	}

	handler := client.Call

	// Apply middleware in reverse order so first registered runs first.
	for i := len(r.middleware) - 1; i >= 0; i-- {
		mw := r.middleware[i]
		next := handler
		handler = func(ctx context.Context, a CallArguments, mt ModelType) (any, error) {
			return mw(ctx, name, a, mt, next)
		}
	}

	return handler(ctx, args, modelType)
}

// CallAsync routes an asynchronous call through async middleware to the named
// provider. Routing failures are delivered on the returned channel.
func (r *Registry) CallAsync(ctx context.Context, provider string, args CallArguments, modelType ModelType) <-chan CallResult {
	client, name, err := r.resolve(provider)
	if err != nil {
		out := make(chan CallResult, 1)
		out <- CallResult{Err: err}
		close(out)
		return out
	}

	handler := client.CallAsync

	for i := len(r.asyncMW) - 1; i >= 0; i-- {
		mw := r.asyncMW[i]
		next := handler
		handler = func(ctx context.Context, a CallArguments, mt ModelType) <-chan CallResult {
			return mw(ctx, name, a, mt, next)
		}
	}

	return handler(ctx, args, modelType)
}

// Close releases resources held by all registered clients.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var firstErr error
	for _, client := range r.clients {
		if closer, ok := client.(Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
