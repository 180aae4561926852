package logs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitroom/internal/api"
	"fitroom/internal/apiclient"
)

// ErrFiltersRequireAPI marks filter flags that cannot be honored by the
// plain-text file fallback.
var ErrFiltersRequireAPI = errors.New("log filters require daemon API access")

const defaultFetchLimit = 200

// Filters contains optional predicates supported by API log streaming.
type Filters struct {
	Level      string
	Component  string
	Generation int64
}

func (f Filters) empty() bool {
	return strings.TrimSpace(f.Level) == "" &&
		strings.TrimSpace(f.Component) == "" &&
		f.Generation == 0
}

// Options controls stream behavior. Lines bounds the initial backlog; zero
// means everything the source retains.
type Options struct {
	Lines   int
	Follow  bool
	Filters Filters
}

// Stream emits log events from the daemon API when it is reachable, falling
// back to tailing logPath. It reports whether anything was emitted. Follow
// mode runs until ctx is cancelled; cancellation is a clean return.
func Stream(
	ctx context.Context,
	client *apiclient.Client,
	logPath string,
	opts Options,
	onEvent func(api.LogEvent),
	onLine func(string),
) (bool, error) {
	printed, err := streamAPI(ctx, client, opts, onEvent)
	if err == nil || errors.Is(err, context.Canceled) {
		return printed, nil
	}
	if !apiclient.IsUnavailable(err) {
		return printed, err
	}
	if !opts.Filters.empty() {
		return false, fmt.Errorf("%w: %w", ErrFiltersRequireAPI, err)
	}
	if strings.TrimSpace(logPath) == "" {
		return false, err
	}
	return streamFile(ctx, logPath, opts, onLine)
}

func streamAPI(
	ctx context.Context,
	client *apiclient.Client,
	opts Options,
	onEvent func(api.LogEvent),
) (bool, error) {
	query := apiclient.LogsQuery{
		Limit:      opts.Lines,
		Level:      opts.Filters.Level,
		Component:  opts.Filters.Component,
		Generation: opts.Filters.Generation,
	}
	if query.Limit <= 0 {
		query.Limit = defaultFetchLimit
	}

	printed := false
	for {
		resp, err := client.Logs(ctx, query)
		if err != nil {
			return printed, err
		}
		for _, evt := range resp.Events {
			if onEvent != nil {
				onEvent(evt)
			}
			printed = true
		}
		if !opts.Follow {
			return printed, nil
		}
		query.Since = resp.Next
		query.Limit = defaultFetchLimit
		query.Follow = true
	}
}

func streamFile(ctx context.Context, path string, opts Options, onLine func(string)) (bool, error) {
	limit := opts.Lines
	if limit < 0 {
		limit = 0
	}
	offset := int64(-1)
	if limit == 0 {
		offset = 0
	}

	printed := false
	wait := time.Duration(0)
	for {
		result, err := Tail(ctx, path, TailOptions{
			Offset: offset,
			Limit:  limit,
			Follow: opts.Follow,
			Wait:   wait,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return printed, nil
			}
			return printed, fmt.Errorf("tail logs: %w", err)
		}
		for _, line := range result.Lines {
			if onLine != nil {
				onLine(line)
			}
			printed = true
		}
		offset = result.Offset
		limit = 0
		if !opts.Follow {
			return printed, nil
		}
		wait = time.Second
		select {
		case <-ctx.Done():
			return printed, nil
		default:
		}
	}
}
