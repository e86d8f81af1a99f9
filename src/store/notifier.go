// Package store carries the live-snapshot change notifier. Every read of a
// collection returns the full ordered record set; the notifier only tells
// subscribers WHEN to re-read, never what changed.
package store

import (
	"errors"
	"sync"
)

// Collection names published on mutation.
const (
	CollectionTransactions     = "transactions"
	CollectionAccountSnapshots = "account_snapshots"
	CollectionHoldings         = "investment_holdings"
	CollectionWallets          = "investment_wallets"
	CollectionInvestmentLog    = "investment_transactions"
)

// ErrNoUser is returned when subscribing without an authenticated user.
// Callers must distinguish this from an empty collection: no subscription is
// opened at all.
var ErrNoUser = errors.New("store: no user for subscription")

// Subscription is an open change feed for one (user, collection) pair. The
// channel carries collection names and coalesces bursts; a receive means
// "re-query the full set". Close releases the slot and must be called on
// teardown; the handle is never left to garbage collection.
type Subscription struct {
	C <-chan string

	ch         chan string
	notifier   *Notifier
	userID     int64
	collection string
	closeOnce  sync.Once
}

// Close unregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.notifier.unsubscribe(s)
		close(s.ch)
	})
}

// Notifier fans mutation events out to per-user subscriptions.
type Notifier struct {
	mu   sync.Mutex
	subs map[int64]map[*Subscription]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int64]map[*Subscription]struct{})}
}

// Subscribe opens a change feed for one of the user's collections. An empty
// collection subscribes to every collection of that user. A zero userID
// returns ErrNoUser and opens nothing.
func (n *Notifier) Subscribe(userID int64, collection string) (*Subscription, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	sub := &Subscription{
		ch:         make(chan string, 1),
		notifier:   n,
		userID:     userID,
		collection: collection,
	}
	sub.C = sub.ch

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[*Subscription]struct{})
	}
	n.subs[userID][sub] = struct{}{}
	return sub, nil
}

// Publish signals that a collection of the user changed. Delivery is
// non-blocking: a subscriber that already has a pending hint keeps just the
// one, since a single re-read picks up every change anyway.
func (n *Notifier) Publish(userID int64, collection string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subs[userID] {
		if sub.collection != "" && sub.collection != collection {
			continue
		}
		select {
		case sub.ch <- collection:
		default:
		}
	}
}

func (n *Notifier) unsubscribe(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if set, ok := n.subs[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(n.subs, sub.userID)
		}
	}
}
