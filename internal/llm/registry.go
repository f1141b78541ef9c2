package llm

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Mode decides whether a remote tier may be used at all.
type Mode string

const (
	ModeAuto          Mode = "auto"
	ModeForceFallback Mode = "forceFallback"
)

const FallbackName = "fallback"

// defines a function that creates a new provider instance
type ProviderFactory func() (Provider, error)

// Registry maps provider names to factories. It is built once in main and
// consulted only while resolving the Selection.
type Registry struct {
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// registers a provider factory with the given name
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.factories[name] = factory
}

// creates a new provider instance based on the given name
func (r *Registry) NewProvider(name string) (Provider, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type SelectionOptions struct {
	Mode     Mode
	Remote   string
	Breaker  BreakerSettings
	Observer Observer
	Logger   *zap.Logger
}

// Selection is the provider arrangement chosen at startup. It never changes afterwards.
type Selection struct {
	provider Provider
	remote   string
	tier     string
}

func (s *Selection) Provider() Provider { return s.provider }

// Tier is "remote" when a remote provider is primary, otherwise "fallback".
func (s *Selection) Tier() string { return s.tier }

// Remote names the remote provider in use, empty when running offline.
func (s *Selection) Remote() string { return s.remote }

// Resolve picks the provider arrangement: remote with fallback when the remote
// has a credential and fallback is not forced, fallback alone otherwise.
func (r *Registry) Resolve(opts SelectionOptions) (*Selection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fallback, err := r.NewProvider(FallbackName)
	if err != nil {
		return nil, fmt.Errorf("fallback provider unavailable: %w", err)
	}
	offline := &Selection{provider: fallback, tier: "fallback"}

	if opts.Mode == ModeForceFallback || opts.Remote == "" || opts.Remote == FallbackName {
		logger.Info("Using deterministic fallback provider", zap.String("mode", string(opts.Mode)))
		return offline, nil
	}

	remote, err := r.NewProvider(opts.Remote)
	if errors.Is(err, ErrMissingCredential) {
		logger.Warn("No credential for remote provider, using deterministic fallback",
			zap.String("provider", opts.Remote))
		return offline, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Using remote provider with deterministic fallback", zap.String("provider", opts.Remote))
	return &Selection{
		provider: NewTiered(remote, fallback, TieredOptions{
			Breaker:  opts.Breaker,
			Observer: opts.Observer,
			Logger:   logger,
		}),
		remote: opts.Remote,
		tier:   "remote",
	}, nil
}
