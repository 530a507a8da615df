package notifications

import (
	"context"
	"log"

	"ppf-ops-platform/internal/agent/gateway"
)

// Feed is the remote notification surface the syncer drives.
type Feed interface {
	Notifications(ctx context.Context, token string) (*gateway.NotificationPage, error)
	MarkNotificationRead(ctx context.Context, token, id string) error
	MarkAllNotificationsRead(ctx context.Context, token string) error
	DeleteNotification(ctx context.Context, token, id string) error
}

// TokenSource yields the current access token, or "" when signed out.
type TokenSource interface {
	AccessToken() string
}

// Syncer keeps a Store aligned with the server feed: remote mutation first,
// local bookkeeping on success.
type Syncer struct {
	store  *Store
	feed   Feed
	tokens TokenSource
}

func NewSyncer(store *Store, feed Feed, tokens TokenSource) *Syncer {
	return &Syncer{store: store, feed: feed, tokens: tokens}
}

// Sync replaces the cache with the server's current window and unread count.
func (s *Syncer) Sync(ctx context.Context) error {
	token := s.tokens.AccessToken()
	if token == "" {
		return nil
	}
	page, err := s.feed.Notifications(ctx, token)
	if err != nil {
		s.store.SetConnected(false)
		return err
	}
	s.store.SetAll(page.Notifications, page.UnreadCount)
	s.store.SetConnected(true)
	return nil
}

// MarkRead marks one notification read remotely and mirrors it locally. A
// KindNotFound answer means the item is already gone server-side; the local
// flip still happens so the badge stays honest.
func (s *Syncer) MarkRead(ctx context.Context, id string) error {
	token := s.tokens.AccessToken()
	if token == "" {
		return nil
	}
	if err := s.feed.MarkNotificationRead(ctx, token, id); err != nil {
		if gateway.KindOf(err) != gateway.KindNotFound {
			return err
		}
		log.Printf("notifications: %s already gone server-side", id)
	}
	s.store.MarkRead(id)
	return nil
}

// MarkAllRead marks the whole feed read remotely and locally.
func (s *Syncer) MarkAllRead(ctx context.Context) error {
	token := s.tokens.AccessToken()
	if token == "" {
		return nil
	}
	if err := s.feed.MarkAllNotificationsRead(ctx, token); err != nil {
		return err
	}
	s.store.MarkAllRead()
	return nil
}

// Remove deletes one notification remotely and locally.
func (s *Syncer) Remove(ctx context.Context, id string) error {
	token := s.tokens.AccessToken()
	if token == "" {
		return nil
	}
	if err := s.feed.DeleteNotification(ctx, token, id); err != nil {
		if gateway.KindOf(err) != gateway.KindNotFound {
			return err
		}
	}
	s.store.Remove(id)
	return nil
}
