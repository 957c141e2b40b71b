package cloudflare

import "github.com/irah1999/cloud-flair/internal/stream"

// Register adds the Cloudflare provider to the registry using the given configuration.
func Register(reg *stream.Registry, config *Config) {
	reg.Register(providerName, func() (stream.Provider, error) {
		client, err := NewClient(config)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
