package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateInference(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	if c.Paths.UploadsDir == c.Paths.ResultsDir {
		return errors.New("paths.uploads_dir and paths.results_dir must differ")
	}
	return nil
}

func (c *Config) validateInference() error {
	base := strings.TrimSpace(c.Inference.BaseURL)
	if base == "" {
		return errors.New("inference.base_url must be set (or set FITROOM_INFERENCE_URL)")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("inference.base_url %q is not a valid URL", base)
	}
	if err := ensurePositiveMap(map[string]int{
		"inference.health_timeout":  c.Inference.HealthTimeout,
		"inference.request_timeout": c.Inference.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.generation_workers":   c.Workflow.GenerationWorkers,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	})
}

func (c *Config) validateCleanup() error {
	if !c.Cleanup.Enabled {
		return nil
	}
	return ensurePositiveMap(map[string]int{
		"cleanup.min_age_hours":  c.Cleanup.MinAgeHours,
		"cleanup.interval_hours": c.Cleanup.IntervalHours,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
