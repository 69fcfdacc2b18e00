package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentProviderName = "CHASE_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "CHASE_AGENT_BASE_URL"
	EnvAgentToken        = "CHASE_AGENT_TOKEN"
	EnvAgentDeployment   = "CHASE_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "CHASE_AGENT_API_VERSION"
	EnvAgentAuthType     = "CHASE_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "CHASE_AGENT_MODEL_NAME"
)

// FinalizeAgent applies the three-phase finalize pattern to a go-agents
// AgentConfig: library defaults, environment variable overrides, validation.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

// MergeAgent overwrites non-zero fields of base from overlay.
func MergeAgent(base, overlay *gaconfig.AgentConfig) {
	if overlay.Name != "" {
		base.Name = overlay.Name
	}
	if overlay.Provider != nil {
		if base.Provider == nil {
			base.Provider = &gaconfig.ProviderConfig{}
		}
		if overlay.Provider.Name != "" {
			base.Provider.Name = overlay.Provider.Name
		}
		if overlay.Provider.BaseURL != "" {
			base.Provider.BaseURL = overlay.Provider.BaseURL
		}
		for k, v := range overlay.Provider.Options {
			if base.Provider.Options == nil {
				base.Provider.Options = make(map[string]any)
			}
			base.Provider.Options[k] = v
		}
	}
	if overlay.Model != nil {
		if base.Model == nil {
			base.Model = &gaconfig.ModelConfig{}
		}
		if overlay.Model.Name != "" {
			base.Model.Name = overlay.Model.Name
		}
	}
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(EnvAgentProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}
