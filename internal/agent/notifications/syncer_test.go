package notifications

import (
	"context"
	"testing"

	"ppf-ops-platform/internal/agent/gateway"
)

type fakeFeed struct {
	page       *gateway.NotificationPage
	fetchErr   error
	mutateErr  error
	readIDs    []string
	allReads   int
	deletedIDs []string
}

func (f *fakeFeed) Notifications(_ context.Context, _ string) (*gateway.NotificationPage, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.page, nil
}

func (f *fakeFeed) MarkNotificationRead(_ context.Context, _, id string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.readIDs = append(f.readIDs, id)
	return nil
}

func (f *fakeFeed) MarkAllNotificationsRead(_ context.Context, _ string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.allReads++
	return nil
}

func (f *fakeFeed) DeleteNotification(_ context.Context, _, id string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestSync_ReplacesWindow(t *testing.T) {
	store := NewStore()
	store.Add(notice("old", false))
	feed := &fakeFeed{page: &gateway.NotificationPage{
		Notifications: []gateway.Notification{notice("n1", false), notice("n2", true)},
		UnreadCount:   1,
	}}

	if err := NewSyncer(store, feed, staticToken("tok")).Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	snap := store.Snapshot()
	if len(snap.Notifications) != 2 || snap.UnreadCount != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !snap.Connected {
		t.Error("expected connected after successful sync")
	}
}

func TestSync_FailureMarksDisconnected(t *testing.T) {
	store := NewStore()
	store.SetConnected(true)
	feed := &fakeFeed{fetchErr: &gateway.Error{Kind: gateway.KindNetwork, Message: "down"}}

	if err := NewSyncer(store, feed, staticToken("tok")).Sync(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if store.Snapshot().Connected {
		t.Error("expected disconnected after failed sync")
	}
}

func TestSync_NoTokenIsNoOp(t *testing.T) {
	store := NewStore()
	feed := &fakeFeed{fetchErr: &gateway.Error{Kind: gateway.KindNetwork}}

	if err := NewSyncer(store, feed, staticToken("")).Sync(context.Background()); err != nil {
		t.Fatalf("Sync without token should be a no-op, got %v", err)
	}
}

func TestMarkRead_RemoteThenLocal(t *testing.T) {
	store := NewStore()
	store.SetAll([]gateway.Notification{notice("n1", false)}, 1)
	feed := &fakeFeed{}

	if err := NewSyncer(store, feed, staticToken("tok")).MarkRead(context.Background(), "n1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if len(feed.readIDs) != 1 || feed.readIDs[0] != "n1" {
		t.Errorf("remote reads = %v", feed.readIDs)
	}
	if got := store.Snapshot().UnreadCount; got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
}

func TestMarkRead_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	store := NewStore()
	store.SetAll([]gateway.Notification{notice("n1", false)}, 1)
	feed := &fakeFeed{mutateErr: &gateway.Error{Kind: gateway.KindNetwork, Message: "down"}}

	if err := NewSyncer(store, feed, staticToken("tok")).MarkRead(context.Background(), "n1"); err == nil {
		t.Fatal("expected error")
	}
	if got := store.Snapshot().UnreadCount; got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
}

func TestMarkRead_GoneServerSideStillFlipsLocally(t *testing.T) {
	store := NewStore()
	store.SetAll([]gateway.Notification{notice("n1", false)}, 1)
	feed := &fakeFeed{mutateErr: &gateway.Error{Kind: gateway.KindNotFound, Message: "gone"}}

	if err := NewSyncer(store, feed, staticToken("tok")).MarkRead(context.Background(), "n1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got := store.Snapshot().UnreadCount; got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
}

func TestMarkAllReadAndRemove(t *testing.T) {
	store := NewStore()
	store.SetAll([]gateway.Notification{notice("n1", false), notice("n2", false)}, 2)
	feed := &fakeFeed{}
	syncer := NewSyncer(store, feed, staticToken("tok"))

	if err := syncer.MarkAllRead(context.Background()); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if feed.allReads != 1 || store.Snapshot().UnreadCount != 0 {
		t.Errorf("allReads = %d, unread = %d", feed.allReads, store.Snapshot().UnreadCount)
	}

	if err := syncer.Remove(context.Background(), "n1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	snap := store.Snapshot()
	if len(feed.deletedIDs) != 1 || len(snap.Notifications) != 1 {
		t.Errorf("deleted = %v, remaining = %d", feed.deletedIDs, len(snap.Notifications))
	}
}
