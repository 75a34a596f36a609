package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crljhnmngs/portfolio-admin/pkg/ratelimit"
)

// Policy names used by the router.
const (
	PolicyLogin         = "login"
	PolicySkillsGet     = "skills-get"
	PolicySkillsWrite   = "skills-write"
	PolicyProjectsGet   = "projects-get"
	PolicyProjectsWrite = "projects-write"
)

// Policies maps a policy name to its rate limit.
type Policies map[string]ratelimit.Config

type policyFile struct {
	Policies map[string]ratelimit.Config `yaml:"policies"`
}

// DefaultPolicies returns the built-in per-route limits.
func DefaultPolicies() Policies {
	return Policies{
		PolicyLogin:         {Window: 15 * time.Minute, MaxAttempts: 5, Prefix: PolicyLogin},
		PolicySkillsGet:     {Window: time.Minute, MaxAttempts: 60, Prefix: PolicySkillsGet},
		PolicySkillsWrite:   {Window: time.Minute, MaxAttempts: 30, Prefix: PolicySkillsWrite},
		PolicyProjectsGet:   {Window: time.Minute, MaxAttempts: 60, Prefix: PolicyProjectsGet},
		PolicyProjectsWrite: {Window: time.Minute, MaxAttempts: 30, Prefix: PolicyProjectsWrite},
	}
}

// Get returns the named policy, falling back to the package defaults.
func (p Policies) Get(name string) ratelimit.Config {
	if cfg, ok := p[name]; ok {
		return cfg
	}
	cfg := ratelimit.DefaultConfig()
	cfg.Prefix = name
	return cfg
}

// LoadPolicies returns the built-in policies overlaid with path.
// An empty path returns the defaults.
//
// File format:
//
//	policies:
//	  login:
//	    window: 10m
//	    max_attempts: 3
//
// Missing fields of an overridden policy keep the built-in value, and the
// prefix defaults to the policy name.
// The path comes from operator configuration, not request input.
func LoadPolicies(path string) (Policies, error) {
	policies := DefaultPolicies()
	if path == "" {
		return policies, nil
	}

	// #nosec G304 -- path is operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	names := make([]string, 0, len(file.Policies))
	for name := range file.Policies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		override := file.Policies[name]
		merged := policies.Get(name)
		if override.Window != 0 {
			merged.Window = override.Window
		}
		if override.MaxAttempts != 0 {
			merged.MaxAttempts = override.MaxAttempts
		}
		if override.Prefix != "" {
			merged.Prefix = override.Prefix
		}
		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
		policies[name] = merged
	}

	return policies, nil
}
