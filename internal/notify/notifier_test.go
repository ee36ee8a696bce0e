package notify

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"restaurant-orders/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string {
	return &v
}

func subscribe(t *testing.T, client *redis.Client, topics ...string) *redis.PubSub {
	t.Helper()
	sub := client.Subscribe(context.Background(), topics...)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)
	return sub
}

func collect(t *testing.T, sub *redis.PubSub, n int) map[string]Event {
	t.Helper()
	got := make(map[string]Event, n)
	ch := sub.Channel()
	for i := 0; i < n; i++ {
		select {
		case msg := <-ch:
			var event Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
			got[msg.Channel] = event
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", i, n)
		}
	}
	return got
}

func TestNotifyStatusChangedFansOutToAllTopics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	order := &domain.Order{
		ID:           42,
		Status:       domain.StatusPreparing,
		UserID:       strPtr("u1"),
		CustomerName: "Maria Petrova",
		Total:        decimal.RequireFromString("300.00"),
	}
	topics := []string{OrderTopic(42), AdminTopic, UserTopic("u1")}
	sub := subscribe(t, client, topics...)

	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n := NewNotifier(NewRedisPublisher(client), nil, time.Second)
	n.now = func() time.Time { return fixedNow }

	n.NotifyStatusChanged(order, domain.StatusConfirmed, "")
	n.Close()

	got := collect(t, sub, len(topics))

	var channels []string
	for ch := range got {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	want := append([]string(nil), topics...)
	sort.Strings(want)
	if diff := cmp.Diff(want, channels); diff != "" {
		t.Fatalf("topic mismatch (-want +got):\n%s", diff)
	}

	expected := Event{
		Type:         EventStatusChanged,
		OrderID:      42,
		Status:       domain.StatusPreparing,
		OldStatus:    domain.StatusConfirmed,
		Message:      "being prepared",
		Progress:     60,
		CustomerName: "Maria Petrova",
		Total:        "300.00",
		Timestamp:    fixedNow,
	}
	for topic, event := range got {
		if diff := cmp.Diff(expected, event, cmpopts.EquateApproxTime(time.Second)); diff != "" {
			t.Fatalf("event on %s mismatch (-want +got):\n%s", topic, diff)
		}
	}
}

func TestNotifyStatusChangedGuestSkipsUserTopic(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := subscribe(t, client, OrderTopic(7), AdminTopic, UserTopic("u1"))

	n := NewNotifier(NewRedisPublisher(client), nil, time.Second)
	order := &domain.Order{ID: 7, Status: domain.StatusCancelled, SessionID: strPtr("tok-1")}
	n.NotifyStatusChanged(order, domain.StatusPending, "")
	n.Close()

	got := collect(t, sub, 2)
	require.Contains(t, got, OrderTopic(7))
	require.Contains(t, got, AdminTopic)
	require.NotContains(t, got, UserTopic("u1"))
}

func TestNotifyNewOrderReachesAdminOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := subscribe(t, client, AdminTopic, OrderTopic(9))

	n := NewNotifier(NewRedisPublisher(client), nil, time.Second)
	order := &domain.Order{
		ID:           9,
		Status:       domain.StatusPending,
		CustomerName: "Guest",
		Total:        decimal.RequireFromString("95.50"),
	}
	n.NotifyNewOrder(order)
	n.Close()

	got := collect(t, sub, 1)
	event, ok := got[AdminTopic]
	require.True(t, ok)
	require.Equal(t, EventNewOrder, event.Type)
	require.Equal(t, int64(9), event.OrderID)
	require.Equal(t, 10, event.Progress)
	require.Equal(t, "95.50", event.Total)
	require.NotContains(t, got, OrderTopic(9))
}

func TestNotifyStatusChangedCustomMessage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := subscribe(t, client, AdminTopic)

	n := NewNotifier(NewRedisPublisher(client), nil, time.Second)
	order := &domain.Order{ID: 3, Status: domain.StatusReady}
	n.NotifyStatusChanged(order, domain.StatusPreparing, "courier is on the way")
	n.Close()

	got := collect(t, sub, 1)
	require.Equal(t, "courier is on the way", got[AdminTopic].Message)
}

func TestStatusMessageDefaults(t *testing.T) {
	tests := []struct {
		status   domain.OrderStatus
		message  string
		progress int
	}{
		{domain.StatusPending, "received, pending confirmation", 10},
		{domain.StatusConfirmed, "confirmed, will be prepared soon", 25},
		{domain.StatusPreparing, "being prepared", 60},
		{domain.StatusReady, "ready for pickup/delivery", 90},
		{domain.StatusCompleted, "completed, thank you", 100},
		{domain.StatusCancelled, "cancelled", 0},
	}
	for _, tc := range tests {
		if got := StatusMessage(tc.status); got != tc.message {
			t.Errorf("StatusMessage(%s) = %q, want %q", tc.status, got, tc.message)
		}
		if got := StatusProgress(tc.status); got != tc.progress {
			t.Errorf("StatusProgress(%s) = %d, want %d", tc.status, got, tc.progress)
		}
	}
}

func TestStatusMessageUnknownStatus(t *testing.T) {
	got := StatusMessage(domain.OrderStatus("weird"))
	if got != "status updated to weird" {
		t.Fatalf("unexpected fallback message %q", got)
	}
}
