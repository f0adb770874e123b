package provider

import (
	"fmt"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// New builds the provider selected by cfg.
func New(cfg *contract.Config) (contract.CommitProvider, error) {
	if err := contract.ValidateProviderConfig(cfg); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case schema.GitLabProvider:
		return NewGitLabProvider(cfg.GitLabURL, cfg.GitLabToken)
	case schema.LocalProvider:
		return NewLocalProvider(cfg.LocalRoot)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", contract.ErrConfiguration, cfg.Provider)
	}
}
