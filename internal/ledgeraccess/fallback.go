package ledgeraccess

import (
	"fmt"

	"fitroom/internal/apiclient"
	"fitroom/internal/config"
	"fitroom/internal/ledger"
)

// Session represents a ledger access handle and its cleanup function.
type Session struct {
	Access Access
	// Direct reports that the session bypasses the daemon API and operates
	// on the ledger database itself.
	Direct bool
	close  func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenWithFallback tries daemon API access first, then falls back to direct
// store access. The dial function must probe the daemon, since building an
// HTTP client cannot itself detect an absent listener.
func OpenWithFallback(
	cfg *config.Config,
	dial func() (*apiclient.Client, error),
	openStore func() (*ledger.Store, error),
) (Session, error) {
	if dial != nil {
		if client, err := dial(); err == nil && client != nil {
			return Session{Access: NewAPIAccess(client)}, nil
		}
	}

	if openStore == nil {
		return Session{}, fmt.Errorf("open ledger store: no store opener configured")
	}
	store, err := openStore()
	if err != nil {
		return Session{}, fmt.Errorf("open ledger store: %w", err)
	}
	return Session{
		Access: NewStoreAccess(cfg, store),
		Direct: true,
		close:  store.Close,
	}, nil
}
