package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"fitroom/internal/apiclient"
	"fitroom/internal/config"
	"fitroom/internal/ledger"
	"fitroom/internal/ledgeraccess"
)

const daemonProbeTimeout = 2 * time.Second

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// apiClient builds an unprobed daemon API client. Returns nil when no API
// address is configured.
func (c *commandContext) apiClient(cfg *config.Config) (*apiclient.Client, error) {
	base := ""
	if c.apiFlag != nil {
		base = strings.TrimSpace(*c.apiFlag)
	}
	token := ""
	if cfg != nil {
		if base == "" {
			base = cfg.Paths.APIBind
		}
		token = cfg.Paths.APIToken
	}
	return apiclient.New(apiclient.Config{BaseURL: base, Token: token})
}

// dialAPI returns a dial function that verifies the daemon is actually
// listening. TCP clients connect lazily, so a status probe is the only way
// to know whether fallback is needed.
func (c *commandContext) dialAPI(ctx context.Context, cfg *config.Config) func() (*apiclient.Client, error) {
	return func() (*apiclient.Client, error) {
		client, err := c.apiClient(cfg)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apiclient.ErrUnavailable
		}
		probeCtx, cancel := context.WithTimeout(ctx, daemonProbeTimeout)
		defer cancel()
		if _, err := client.Status(probeCtx); err != nil {
			return nil, err
		}
		return client, nil
	}
}

// withSession runs fn against the daemon API when it is reachable and
// otherwise against the ledger database directly.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(ledgeraccess.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	session, err := ledgeraccess.OpenWithFallback(cfg, c.dialAPI(cmd.Context(), cfg), func() (*ledger.Store, error) {
		return ledger.Open(cfg)
	})
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(session)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
