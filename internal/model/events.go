package model

import "sync"

// ChangeKind tells interested views which part of the basket moved, so they
// can re-render selectively instead of diffing the whole aggregate.
type ChangeKind string

const (
	ChangeItems          ChangeKind = "items"
	ChangeShipping       ChangeKind = "shipping"
	ChangeBilling        ChangeKind = "billing"
	ChangeCustomer       ChangeKind = "customer"
	ChangeCoupons        ChangeKind = "coupons"
	ChangePayment        ChangeKind = "payment"
	ChangeOrderCreated   ChangeKind = "order-created"
	ChangeOrderAbandoned ChangeKind = "order-abandoned"
	ChangeStatus         ChangeKind = "status"
	ChangeReset          ChangeKind = "reset"
)

// Change is one basket-changed notification. Basket is a snapshot taken at
// publish time; receivers may hold it without racing the session.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Basket *Basket    `json:"basket"`
}

// Notifier fans basket changes out to subscribers. Publishing never blocks:
// a subscriber that falls behind misses intermediate changes and re-renders
// from the next snapshot it receives.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

// Subscribe registers a receiver and returns its id and channel.
// buffer controls how many changes may queue before drops occur.
func (n *Notifier) Subscribe(buffer int) (int, <-chan Change) {
	if buffer < 1 {
		buffer = 1
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan Change, buffer)
	n.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a receiver and closes its channel.
func (n *Notifier) Unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ch, ok := n.subs[id]; ok {
		delete(n.subs, id)
		close(ch)
	}
}

// Publish delivers a change to every subscriber without blocking.
func (n *Notifier) Publish(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- c:
		default:
			// Receiver is behind; it catches up on the next snapshot.
		}
	}
}
