package cli

import (
	"github.com/imishinist/mtl-go/internal/config"
	"github.com/imishinist/mtl-go/pkg/mtl/repo"
)

// openRepo resolves the configured root and opens its repository state.
func openRepo() (*repo.Repo, error) {
	r, _, err := openRepoConfig()
	return r, err
}

// openRepoConfig is like openRepo but also returns the resolved config, for
// callers that need knobs (such as Workers) beyond the repo handles
// themselves.
func openRepoConfig() (*repo.Repo, config.Config, error) {
	cfg, err := config.Resolve(repoRoot)
	if err != nil {
		return nil, config.Config{}, err
	}
	r, err := repo.Open(cfg.Root, cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	return r, cfg, nil
}
