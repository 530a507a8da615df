// agent runs the dashboard-side session lifecycle: it restores the persisted
// session, keeps it refreshed in the background, and mirrors the notification
// feed, exposing both to the embedding UI shell.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ppf-ops-platform/internal/agent/gateway"
	"ppf-ops-platform/internal/agent/notifications"
	"ppf-ops-platform/internal/agent/securestore"
	"ppf-ops-platform/internal/agent/session"
	"ppf-ops-platform/internal/config"
)

// logNotifier surfaces transient notices on the agent log. The UI shell
// replaces this with a toast sink.
type logNotifier struct{}

func (logNotifier) Notify(message string) {
	log.Printf("notice: %s", message)
}

// managerTokens adapts the session manager to the notification syncer.
type managerTokens struct {
	m *session.Manager
}

func (t managerTokens) AccessToken() string {
	s := t.m.Session()
	if s == nil {
		return ""
	}
	return s.Token
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	storePath := cfg.SessionStorePath
	if storePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			log.Fatalf("agent: no config dir, set SESSION_STORE_PATH: %v", err)
		}
		storePath = filepath.Join(dir, "ppfops", "session.bin")
	}
	if err := os.MkdirAll(filepath.Dir(storePath), 0o700); err != nil {
		log.Fatalf("agent: create store dir: %v", err)
	}

	key, err := loadStoreKey(cfg.SessionStoreKey)
	if err != nil {
		log.Fatalf("agent: SESSION_STORE_KEY: %v", err)
	}
	store, err := securestore.New(storePath, key)
	if err != nil {
		log.Fatalf("agent: %v", err)
	}

	gw := gateway.NewClient(cfg.GatewayURL, nil)
	manager := session.NewManager(store, gw, logNotifier{})
	manager.SetRefreshInterval(cfg.RefreshInterval())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager.Bootstrap(ctx)
	log.Printf("agent: session state after bootstrap: %s", manager.State())

	go manager.Run(ctx)

	feed := notifications.NewStore()
	syncer := notifications.NewSyncer(feed, gw, managerTokens{m: manager})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			if manager.State() == session.StateAuthenticated {
				if err := syncer.Sync(ctx); err != nil {
					log.Printf("agent: notification sync: %v", err)
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	<-ctx.Done()
	log.Println("agent stopped")
}

// loadStoreKey accepts a hex-encoded 32-byte key, or a path to a file holding
// one (hex or raw).
func loadStoreKey(s string) ([]byte, error) {
	if key, err := hex.DecodeString(s); err == nil && len(key) == securestore.KeySize {
		return key, nil
	}
	raw, err := os.ReadFile(s)
	if err != nil {
		return nil, err
	}
	trimmed := string(raw)
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == '\n' || trimmed[len(trimmed)-1] == '\r') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if key, err := hex.DecodeString(trimmed); err == nil && len(key) == securestore.KeySize {
		return key, nil
	}
	if len(raw) == securestore.KeySize {
		return raw, nil
	}
	return nil, errors.New("key must be 32 bytes, hex-encoded inline or in a file")
}
