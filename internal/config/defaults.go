package config

const (
	defaultDataDir            = "~/.local/share/fitroom"
	defaultUploadsDir         = "~/.local/share/fitroom/uploads"
	defaultResultsDir         = "~/.local/share/fitroom/results"
	defaultLogDir             = "~/.local/share/fitroom/logs"
	defaultAPIBind            = "127.0.0.1:7487"
	defaultInferenceBaseURL   = "http://127.0.0.1:8000"
	defaultHealthTimeout      = 5
	defaultRequestTimeout     = 300
	defaultGenerationWorkers  = 2
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 10
	defaultCleanupMinAgeHours = 24
	defaultCleanupInterval    = 6
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			UploadsDir: defaultUploadsDir,
			ResultsDir: defaultResultsDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Inference: Inference{
			BaseURL:        defaultInferenceBaseURL,
			HealthTimeout:  defaultHealthTimeout,
			RequestTimeout: defaultRequestTimeout,
		},
		Workflow: Workflow{
			GenerationWorkers:  defaultGenerationWorkers,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Cleanup: Cleanup{
			Enabled:       true,
			MinAgeHours:   defaultCleanupMinAgeHours,
			IntervalHours: defaultCleanupInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Generation:     true,
			Errors:         true,
			Blacklist:      true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
