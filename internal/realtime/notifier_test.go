package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"assetbook/pkg/model"
)

func TestNotifierDeliversToSubscribers(t *testing.T) {
	hub := NewHub(testLogger())
	watcher := testClient(4)
	hub.Join(watcher, "asset-a")

	notifier := NewNotifier(hub, nil, 16, testLogger())
	defer notifier.Stop()

	notifier.Notify("asset-a", model.UsageChange{
		Action: model.ActionCreate,
		Data:   &model.UsageDetail{Usage: model.Usage{ID: "u1", AssetID: "asset-a"}},
	})

	var change model.UsageChange
	if err := json.Unmarshal(receive(t, watcher), &change); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if change.Action != model.ActionCreate {
		t.Errorf("expected action %q, got %q", model.ActionCreate, change.Action)
	}
	if change.Data == nil || change.Data.ID != "u1" {
		t.Errorf("unexpected event data: %+v", change.Data)
	}
}

func TestNotifierNeverBlocksOnFullQueue(t *testing.T) {
	hub := NewHub(testLogger())
	notifier := NewNotifier(hub, nil, 1, testLogger())
	defer notifier.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			notifier.Notify("asset-a", model.UsageChange{Action: model.ActionUpdate})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked the caller")
	}
}

func TestNotifyAfterStopIsSafe(t *testing.T) {
	hub := NewHub(testLogger())
	notifier := NewNotifier(hub, nil, 4, testLogger())
	notifier.Stop()

	// Must not panic on the closed channel, and double Stop is a no-op.
	notifier.Notify("asset-a", model.UsageChange{Action: model.ActionDelete})
	notifier.Stop()
}

func TestNotifierDrainsInFlightEventsOnStop(t *testing.T) {
	hub := NewHub(testLogger())
	watcher := testClient(16)
	hub.Join(watcher, "asset-a")

	notifier := NewNotifier(hub, nil, 16, testLogger())
	for i := 0; i < 5; i++ {
		notifier.Notify("asset-a", model.UsageChange{Action: model.ActionCreate})
	}
	notifier.Stop()

	for i := 0; i < 5; i++ {
		receive(t, watcher)
	}
}
