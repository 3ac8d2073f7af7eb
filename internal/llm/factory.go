package llm

import "fmt"

// New selects a provider by backend kind. Hosted-credential validation
// happens here, before any network traffic.
func New(config Config) (Provider, error) {
	switch config.Backend {
	case BackendHosted:
		return NewHostedProvider(config)
	case BackendLocal:
		return NewLocalProvider(config)
	default:
		return nil, fmt.Errorf("unknown backend %q (expected %q or %q)", config.Backend, BackendHosted, BackendLocal)
	}
}
