package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"restaurant-orders/internal/domain"
)

// Publisher is the broker abstraction events travel over. Implementations
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// AdminTopic receives every new-order and status-change event for the staff
// dashboard.
const AdminTopic = "admin.orders"

// OrderTopic addresses subscribers watching a single order's tracking view.
func OrderTopic(orderID int64) string {
	return fmt.Sprintf("order.%d", orderID)
}

// UserTopic addresses notifications for one authenticated user.
func UserTopic(userID string) string {
	return fmt.Sprintf("user.%s", userID)
}

// Event is the self-contained payload delivered to every topic; subscribers
// never need a follow-up fetch. Timestamp is server-generated so receivers
// can order events themselves, since the broker makes no cross-topic
// ordering guarantee.
type Event struct {
	Type         string             `json:"type"`
	OrderID      int64              `json:"orderId"`
	Status       domain.OrderStatus `json:"status"`
	OldStatus    domain.OrderStatus `json:"oldStatus,omitempty"`
	Message      string             `json:"message"`
	Progress     int                `json:"progress"`
	CustomerName string             `json:"customerName"`
	Total        string             `json:"total"`
	Timestamp    time.Time          `json:"timestamp"`
}

const (
	EventNewOrder      = "new_order"
	EventStatusChanged = "order_status_changed"
)

var statusMessages = map[domain.OrderStatus]string{
	domain.StatusPending:   "received, pending confirmation",
	domain.StatusConfirmed: "confirmed, will be prepared soon",
	domain.StatusPreparing: "being prepared",
	domain.StatusReady:     "ready for pickup/delivery",
	domain.StatusCompleted: "completed, thank you",
	domain.StatusCancelled: "cancelled",
}

var statusProgress = map[domain.OrderStatus]int{
	domain.StatusPending:   10,
	domain.StatusConfirmed: 25,
	domain.StatusPreparing: 60,
	domain.StatusReady:     90,
	domain.StatusCompleted: 100,
	domain.StatusCancelled: 0,
}

// StatusMessage returns the default human-readable text for a status.
func StatusMessage(s domain.OrderStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return fmt.Sprintf("status updated to %s", s)
}

// StatusProgress maps a status to the progress-bar percentage shown in UIs.
func StatusProgress(s domain.OrderStatus) int {
	return statusProgress[s]
}

// Notifier fans order events out to the per-order, admin, and per-user
// topics. Publishing is fire-and-forget relative to the transaction that
// produced the event: each topic gets its own goroutine with a shared
// deadline, failures are logged and dropped, and the calling request is
// never stalled.
type Notifier struct {
	pub     Publisher
	logger  *log.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewNotifier(pub Publisher, logger *log.Logger, timeout time.Duration) *Notifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Notifier{
		pub:     pub,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// NotifyNewOrder announces a freshly created order to the staff dashboard.
func (n *Notifier) NotifyNewOrder(order *domain.Order) {
	event := Event{
		Type:         EventNewOrder,
		OrderID:      order.ID,
		Status:       order.Status,
		Message:      fmt.Sprintf("new order #%d received from %s", order.ID, order.CustomerName),
		Progress:     StatusProgress(order.Status),
		CustomerName: order.CustomerName,
		Total:        order.Total.StringFixed(2),
		Timestamp:    n.now().UTC(),
	}
	n.dispatch(event, AdminTopic)
}

// NotifyStatusChanged fans a status transition out to all audiences for the
// order. An empty message selects the default text for the new status.
func (n *Notifier) NotifyStatusChanged(order *domain.Order, oldStatus domain.OrderStatus, message string) {
	if message == "" {
		message = StatusMessage(order.Status)
	}
	event := Event{
		Type:         EventStatusChanged,
		OrderID:      order.ID,
		Status:       order.Status,
		OldStatus:    oldStatus,
		Message:      message,
		Progress:     StatusProgress(order.Status),
		CustomerName: order.CustomerName,
		Total:        order.Total.StringFixed(2),
		Timestamp:    n.now().UTC(),
	}

	topics := []string{OrderTopic(order.ID), AdminTopic}
	if order.UserID != nil {
		topics = append(topics, UserTopic(*order.UserID))
	}
	n.dispatch(event, topics...)
}

// dispatch publishes one event to each topic concurrently. Topics are
// independent: one failing publish never blocks or fails another.
func (n *Notifier) dispatch(event Event, topics ...string) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Printf("notify: marshal %s event for order %d: %v", event.Type, event.OrderID, err)
		return
	}

	// Detached from the request context on purpose: the publish deadline is
	// the only thing bounding these goroutines.
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)

	var pending sync.WaitGroup
	for _, topic := range topics {
		n.wg.Add(1)
		pending.Add(1)
		go func(topic string) {
			defer n.wg.Done()
			defer pending.Done()
			if err := n.pub.Publish(ctx, topic, payload); err != nil {
				n.logger.Printf("notify: publish %s to %s: %v", event.Type, topic, err)
			}
		}(topic)
	}
	go func() {
		pending.Wait()
		cancel()
	}()
}

// Close waits for in-flight publishes to finish or time out.
func (n *Notifier) Close() {
	n.wg.Wait()
}
