// Package daemonrun wires the daemon process runtime: logging, the log
// stream and archive, the PID file, startup recovery, preflight, and the
// daemon lifecycle from signal to shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"fitroom/internal/config"
	"fitroom/internal/daemon"
	"fitroom/internal/fileutil"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/preflight"
	"fitroom/internal/services/tryon"
	"fitroom/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Diagnostic  bool
}

// Run starts the fitroom daemon runtime loop and blocks until a termination
// signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("fitroom-%s.log", runID))
	eventsPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("fitroom-%s.events", runID))
	logHub := logging.NewStreamHub(4096)
	eventArchive, archiveErr := logging.NewEventArchive(eventsPath)
	if archiveErr != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize log archive: %v\n", archiveErr)
	} else if eventArchive != nil {
		logHub.AddSink(eventArchive)
	}

	var sessionID string
	var debugLogPath string
	if opts.Diagnostic {
		sessionID = uuid.NewString()
		debugDir := filepath.Join(cfg.Paths.LogDir, "debug")
		if err := os.MkdirAll(debugDir, 0o755); err != nil {
			return fmt.Errorf("create debug log directory: %w", err)
		}
		debugLogPath = filepath.Join(debugDir, fmt.Sprintf("fitroom-%s.log", runID))
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
		Stream:           logHub,
		SessionID:        sessionID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if opts.Diagnostic {
		debugLogger, debugErr := logging.New(logging.Options{
			Level:            "debug",
			Format:           "json",
			OutputPaths:      []string{debugLogPath},
			ErrorOutputPaths: []string{debugLogPath},
			Development:      true,
			SessionID:        sessionID,
		})
		if debugErr != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to initialize debug logger: %v\n", debugErr)
		} else {
			logger = logging.TeeLogger(logger, debugLogger.Handler())
			if err := ensureCurrentLogPointer(filepath.Join(cfg.Paths.LogDir, "debug"), debugLogPath); err != nil {
				fmt.Fprintf(os.Stderr, "warn: unable to update debug/fitroom.log link: %v\n", err)
			}
		}
		logger.Info("diagnostic mode enabled",
			logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
			logging.String(logging.FieldSessionID, sessionID),
			logging.String("debug_log_path", debugLogPath),
		)
	}

	logRuntimeSnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update fitroom.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "fitroom-*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "fitroom-*.events", Exclude: []string{eventsPath}},
		logging.RetentionTarget{Dir: filepath.Join(cfg.Paths.LogDir, "debug"), Pattern: "fitroom-*.log", Exclude: []string{debugLogPath}},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "fitroomd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Error("open ledger store", logging.Error(err))
		return err
	}
	defer store.Close()

	recoverInterrupted(signalCtx, logger, store)
	logLedgerSummary(signalCtx, logger, store)
	runPreflight(signalCtx, logger, cfg)

	backend, err := tryon.FromConfig(cfg)
	if err != nil {
		logger.Error("configure inference backend", logging.Error(err))
		return err
	}

	manager := workflow.NewManager(cfg, store, backend, logger)
	d, err := daemon.New(cfg, store, logger, manager, logPath, logHub, eventArchive)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration, ledger database access, and whether another instance is running"),
		)
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("fitroom daemon shutting down")
	return nil
}

// recoverInterrupted fails generations stranded in processing by a previous
// daemon instance. An in-flight inference call cannot be resumed.
func recoverInterrupted(ctx context.Context, logger *slog.Logger, store *ledger.Store) {
	recovered, err := store.FailStaleProcessing(ctx, "interrupted by daemon restart")
	if err != nil {
		logger.Warn("startup recovery failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "startup_recovery_failed"),
			logging.String(logging.FieldErrorHint, "check ledger database access"),
		)
		return
	}
	if recovered > 0 {
		logger.Info("recovered interrupted generations",
			logging.Int64("count", recovered),
			logging.String(logging.FieldEventType, "startup_recovery"),
		)
	}
}

// logLedgerSummary records the backlog the daemon wakes up to.
func logLedgerSummary(ctx context.Context, logger *slog.Logger, store *ledger.Store) {
	health, err := store.Health(ctx)
	if err != nil {
		logger.Warn("ledger summary unavailable", logging.Error(err))
		return
	}
	logger.Info("ledger summary",
		logging.Int("pending", health.Pending),
		logging.Int("processing", health.Processing),
		logging.Int("completed", health.Completed),
		logging.Int("failed", health.Failed),
		logging.Int("total", health.Total),
		logging.String(logging.FieldEventType, "ledger_summary"),
	)
}

// runPreflight logs the readiness battery. Failures are warnings; the daemon
// still starts so the API stays reachable for diagnosis.
func runPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue; generations may fail until it is resolved"),
		)
	}
}

func logRuntimeSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "runtime_snapshot"),
		logging.String("inference_url", cfg.Inference.BaseURL),
		logging.Int("generation_workers", cfg.Workflow.GenerationWorkers),
		logging.Group("cleanup",
			logging.Bool("enabled", cfg.Cleanup.Enabled),
			logging.Int("min_age_hours", cfg.Cleanup.MinAgeHours),
			logging.Int("interval_hours", cfg.Cleanup.IntervalHours),
		),
		logging.Bool("notifications_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("api_token_present", strings.TrimSpace(cfg.Paths.APIToken) != ""),
	}
	if len(cfg.Logging.ComponentOverrides) > 0 {
		attrs = append(attrs, logging.Any("log_component_overrides", cfg.Logging.ComponentOverrides))
	}
	logger.Info("runtime snapshot", logging.Args(attrs...)...)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "fitroom.log")
	if _, err := fileutil.RemoveIfExists(current); err != nil {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
