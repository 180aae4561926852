package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitroom/internal/fileutil"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/notifications"
	"fitroom/internal/services"
	"fitroom/internal/services/tryon"
	"fitroom/internal/textutil"
)

// processGeneration drives one claimed record to a terminal state. The
// record is already in processing; every exit path below either records an
// outcome or deliberately leaves the record for startup recovery after a
// shutdown.
func (m *Manager) processGeneration(ctx context.Context, logger *slog.Logger, gen *ledger.Generation) {
	ctx = services.WithGenerationID(ctx, gen.ID)
	ctx = services.WithVariant(ctx, gen.Variant)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger = logging.WithContext(ctx, logger)

	logger.Info("generation claimed",
		logging.String("person", gen.PersonName),
		logging.String("garment", gen.GarmentName))

	variant, err := m.store.GetVariant(ctx, gen.Variant)
	if err != nil {
		m.markFailed(ctx, logger, gen, fmt.Sprintf("variant lookup failed: %v", err), err)
		return
	}
	wasBlacklisted := variant.IsBlacklisted

	personData, err := os.ReadFile(gen.PersonImagePath)
	if err != nil {
		m.markFailed(ctx, logger, gen, fmt.Sprintf("read person image: %v", err), err)
		return
	}
	garmentData, err := os.ReadFile(gen.GarmentImagePath)
	if err != nil {
		m.markFailed(ctx, logger, gen, fmt.Sprintf("read garment image: %v", err), err)
		return
	}

	budget := time.Duration(variant.MaxTimeSeconds * float64(time.Second))
	if budget <= 0 {
		budget = defaultBudget
	}
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	logger.Debug("dispatching inference request",
		logging.String("prompt_mode", textutil.Ternary(variant.IsPaid, "enhanced", "standard")),
		logging.Float64("budget_seconds", budget.Seconds()))

	start := time.Now()
	result, err := m.backend.Generate(callCtx, tryon.GenerateRequest{
		PersonImage:     personData,
		PersonFilename:  filepath.Base(gen.PersonImagePath),
		GarmentImage:    garmentData,
		GarmentFilename: filepath.Base(gen.GarmentImagePath),
		EnhancePrompt:   variant.IsPaid,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("daemon shutting down, leaving record for startup recovery")
			return
		}
		m.markFailed(ctx, logger, gen, failureReason(err, budget), err)
		return
	}

	data, contentType, err := m.backend.FetchResult(callCtx, result.ResultURL)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("daemon shutting down, leaving record for startup recovery")
			return
		}
		m.markFailed(ctx, logger, gen, failureReason(err, budget), err)
		return
	}

	resultPath, err := m.writeResult(data, contentType)
	if err != nil {
		m.markFailed(ctx, logger, gen, err.Error(), err)
		return
	}

	if err := m.store.MarkCompleted(ctx, gen.ID, resultPath, elapsed); err != nil {
		m.removeQuiet(logger, resultPath)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not record completion")
			return
		}
		m.setLastError(err)
		logger.Error("failed to record completion",
			logging.Error(err),
			logging.String(logging.FieldEventType, "completion_write_failed"),
			logging.String(logging.FieldErrorHint, "check ledger database access"),
		)
		return
	}

	logger.Info("generation completed",
		logging.Float64("elapsed_seconds", elapsed),
		logging.Float64("cost", gen.Cost),
		logging.String("result", filepath.Base(resultPath)),
		logging.String(logging.FieldEventType, "generation_completed"),
	)

	m.notify(ctx, logger, notifications.EventGenerationCompleted, notifications.Payload{
		"personName":  gen.PersonName,
		"garmentName": gen.GarmentName,
		"variant":     gen.Variant,
		"elapsed":     fmt.Sprintf("%.1fs", elapsed),
	})
	m.checkBlacklist(ctx, logger, gen.Variant, wasBlacklisted)
}

// failureReason maps a backend error to the reason string stored on the
// record. Budget overruns get the canonical timeout wording; everything else
// keeps the classified error text.
func failureReason(err error, budget time.Duration) string {
	if errors.Is(err, services.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("inference timed out after %ds", int(budget.Seconds()))
	}
	return strings.TrimSpace(err.Error())
}

func (m *Manager) markFailed(ctx context.Context, logger *slog.Logger, gen *ledger.Generation, reason string, cause error) {
	m.setLastError(errors.New(reason))

	if err := m.store.MarkFailed(ctx, gen.ID, reason); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not record failure")
			return
		}
		logger.Error("failed to record failure",
			logging.Error(err),
			logging.String("reason", reason),
			logging.String(logging.FieldEventType, "failure_write_failed"),
			logging.String(logging.FieldErrorHint, "check ledger database access"),
		)
		return
	}

	logging.ErrorWithContext(logger, "generation failed", "generation_failed",
		logging.String("error_message", reason),
		logging.String(logging.FieldErrorCode, services.Classify(cause)),
		logging.String(logging.FieldErrorHint, "inspect the backend logs, then submit a new try-on"),
	)

	m.notify(ctx, logger, notifications.EventGenerationFailed, notifications.Payload{
		"personName":  gen.PersonName,
		"garmentName": gen.GarmentName,
		"error":       reason,
	})
}

// checkBlacklist emits the one-shot notification when this completion tipped
// the variant over its ceiling.
func (m *Manager) checkBlacklist(ctx context.Context, logger *slog.Logger, name string, wasBlacklisted bool) {
	variant, err := m.store.GetVariant(ctx, name)
	if err != nil {
		logger.Warn("variant state unavailable after completion", logging.Error(err))
		return
	}
	if wasBlacklisted || !variant.IsBlacklisted {
		return
	}

	attrs := append(logging.DecisionAttrs("blacklist", "variant_disabled", variant.BlacklistReason),
		logging.Alert("blacklist"),
		logging.Float64("avg_seconds", variant.AvgTimeSeconds),
		logging.Float64("max_seconds", variant.MaxTimeSeconds),
		logging.String(logging.FieldImpact, "variant removed from rotation"),
		logging.String(logging.FieldErrorHint, "run 'fitroom variants reset' to restore it"),
	)
	logging.WarnWithContext(logger, "variant blacklisted", "variant_blacklisted", attrs...)

	m.notify(ctx, logger, notifications.EventVariantBlacklisted, notifications.Payload{
		"variant": variant.Name,
		"reason":  variant.BlacklistReason,
	})
}

func (m *Manager) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send notification")
		} else {
			logger.Debug("notification failed",
				logging.Error(err),
				logging.String("event", string(event)))
		}
	}
}

func (m *Manager) writeResult(data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(m.cfg.Paths.ResultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}
	path := filepath.Join(m.cfg.Paths.ResultsDir,
		fmt.Sprintf("result_%s%s", uuid.NewString(), resultExt(contentType)))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result image: %w", err)
	}
	return path, nil
}

func resultExt(contentType string) string {
	if strings.Contains(contentType, "png") {
		return ".png"
	}
	return ".jpg"
}

func (m *Manager) removeQuiet(logger *slog.Logger, path string) {
	if _, err := fileutil.RemoveIfExists(path); err != nil {
		logger.Warn("failed to remove orphaned result image",
			logging.String("path", path),
			logging.Error(err))
	}
}
