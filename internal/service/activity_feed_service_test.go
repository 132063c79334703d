package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandiara-digital/ged-api/internal/dto"
)

func TestActivityFeedDeliversToSubscribers(t *testing.T) {
	feed := NewActivityFeedService(nil, testLogger())
	require.NoError(t, feed.Start())
	defer feed.Stop()

	id, ch := feed.Subscribe()
	defer feed.Unsubscribe(id)

	sent := dto.ActivityEntryResponse{
		ID:        "entry-1",
		ActorID:   "3",
		ActorName: "Amadou Fall (Secrétariat)",
		Action:    "ENREGISTREMENT",
		DocID:     "SAND-000042",
		DocTitle:  "Arrêté n°7",
	}
	feed.Broadcast(sent)

	select {
	case payload := <-ch:
		var received dto.ActivityEntryResponse
		require.NoError(t, json.Unmarshal(payload, &received))
		require.Equal(t, sent.ID, received.ID)
		require.Equal(t, sent.DocID, received.DocID)
	case <-time.After(time.Second):
		t.Fatal("expected a feed delivery")
	}
}

func TestActivityFeedUnsubscribeClosesChannel(t *testing.T) {
	feed := NewActivityFeedService(nil, testLogger())

	id, ch := feed.Subscribe()
	feed.Unsubscribe(id)

	_, open := <-ch
	require.False(t, open)

	// A broadcast after unsubscribe must not panic on the closed channel.
	feed.Broadcast(dto.ActivityEntryResponse{ID: "entry-2", DocID: "SAND-000043"})
}

func TestActivityFeedSlowSubscriberDoesNotBlockWriters(t *testing.T) {
	feed := NewActivityFeedService(nil, testLogger())

	id, _ := feed.Subscribe()
	defer feed.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			feed.Broadcast(dto.ActivityEntryResponse{ID: "flood", DocID: "SAND-000044"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast stalled on a slow subscriber")
	}
}
