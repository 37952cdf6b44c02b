package payment

import "sync"

// orderLocks serializes work per order id inside this process.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func (l *orderLocks) lock(orderID string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*orderLock)
	}
	ol, ok := l.locks[orderID]
	if !ok {
		ol = &orderLock{}
		l.locks[orderID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	return func() {
		ol.mu.Unlock()

		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, orderID)
		}
		l.mu.Unlock()
	}
}
