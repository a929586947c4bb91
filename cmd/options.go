package cmd

import (
	"github.com/spf13/pflag"

	"github.com/KostasZigo/commitgraph/internal/config"
	"github.com/KostasZigo/commitgraph/internal/objects"
	"github.com/KostasZigo/commitgraph/internal/repository"
)

// Flag names shared by the graph and log commands.
const (
	flagConfig       = "config"
	flagRepoPath     = "repo-path"
	flagOutputPath   = "output-path"
	flagGraphvizPath = "graphviz-path"
	flagBranch       = "branch"
	flagFormat       = "format"
	flagWorkers      = "workers"
	flagCacheSize    = "cache-size"
	flagVerify       = "verify"
	flagExclude      = "exclude"
)

// options holds raw flag values; only flags the user set override the loaded config.
type options struct {
	configPath string
	values     config.Config
}

// bindRepoFlags registers the flags every command reading a repository needs.
func (o *options) bindRepoFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.configPath, flagConfig, "", "Path to a TOML config file (default ./"+config.DefaultFile+" if present)")
	flags.StringVarP(&o.values.RepoPath, flagRepoPath, "r", "", "Path to the git repository (default: enclosing repository of the working directory)")
	flags.StringVarP(&o.values.Branch, flagBranch, "b", "", "Branch to walk (default: the checked-out branch)")
	flags.StringSliceVar(&o.values.Exclude, flagExclude, nil, "Glob of entry names to leave out of file lists (repeatable)")
	flags.IntVar(&o.values.CacheSize, flagCacheSize, objects.DefaultCacheSize, "Number of decoded objects kept in memory (0 disables the cache)")
	flags.BoolVar(&o.values.Verify, flagVerify, false, "Verify every object's content against its hash")
}

// resolve loads the config and overlays the flags that were set explicitly.
// A missing repository path falls back to the enclosing repository.
func (o *options) resolve(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		name  string
		apply func()
	}{
		{flagRepoPath, func() { cfg.RepoPath = o.values.RepoPath }},
		{flagOutputPath, func() { cfg.OutputPath = o.values.OutputPath }},
		{flagGraphvizPath, func() { cfg.GraphvizPath = o.values.GraphvizPath }},
		{flagBranch, func() { cfg.Branch = o.values.Branch }},
		{flagFormat, func() { cfg.Format = o.values.Format }},
		{flagWorkers, func() { cfg.Workers = o.values.Workers }},
		{flagCacheSize, func() { cfg.CacheSize = o.values.CacheSize }},
		{flagVerify, func() { cfg.Verify = o.values.Verify }},
		{flagExclude, func() { cfg.Exclude = o.values.Exclude }},
	}
	for _, override := range overrides {
		if flags.Lookup(override.name) != nil && flags.Changed(override.name) {
			override.apply()
		}
	}

	if cfg.RepoPath == "" {
		root, err := findRepoRoot()
		if err != nil {
			return nil, err
		}
		cfg.RepoPath = root
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the repository and its loose object store as configured.
func openStore(cfg *config.Config) (*repository.Repository, *objects.LooseStore, error) {
	repo, err := repository.Open(cfg.RepoPath)
	if err != nil {
		return nil, nil, err
	}

	store := objects.NewLooseStore(repo.Root,
		objects.WithCacheSize(cfg.CacheSize),
		objects.WithHashVerification(cfg.Verify))
	return repo, store, nil
}
