package api

import (
	"net"
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"
)

// connLimiter accepts at most n simultaneous connections. While the quota stays
// full for longer than evictAfter, the connection that has been idle the longest
// is closed to make room.
type connLimiter struct {
	net.Listener
	sem        chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	evictAfter time.Duration

	mu     sync.Mutex
	nextID uint64
	// least recently read first
	active *orderedmap.OrderedMap[uint64, *limitedConn]
}

func limitConnections(l net.Listener, n int, evictAfter time.Duration) net.Listener {
	return &connLimiter{
		Listener:   l,
		sem:        make(chan struct{}, n),
		done:       make(chan struct{}),
		evictAfter: evictAfter,
		active:     orderedmap.NewOrderedMap[uint64, *limitedConn](),
	}
}

func (l *connLimiter) Accept() (net.Conn, error) {
	for {
		timer := time.NewTimer(l.evictAfter)
		select {
		case <-l.done:
			timer.Stop()
			return nil, net.ErrClosed
		case l.sem <- struct{}{}:
			timer.Stop()
			c, err := l.Listener.Accept()
			if err != nil {
				<-l.sem
				return nil, err
			}
			return l.track(c), nil
		case <-timer.C:
			l.evictIdlest()
		}
	}
}

func (l *connLimiter) Close() error {
	err := l.Listener.Close()
	l.closeOnce.Do(func() { close(l.done) })
	return err
}

func (l *connLimiter) track(c net.Conn) *limitedConn {
	l.mu.Lock()
	defer l.mu.Unlock()
	lc := &limitedConn{Conn: c, id: l.nextID, owner: l}
	l.nextID++
	l.active.Set(lc.id, lc)
	return lc
}

func (l *connLimiter) touch(c *limitedConn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active.Delete(c.id) {
		l.active.Set(c.id, c)
	}
}

func (l *connLimiter) evictIdlest() {
	l.mu.Lock()
	el := l.active.Front()
	if el == nil {
		l.mu.Unlock()
		return
	}
	l.active.Delete(el.Key)
	l.mu.Unlock()
	_ = el.Value.Close()
}

func (l *connLimiter) release(c *limitedConn) {
	l.mu.Lock()
	l.active.Delete(c.id)
	l.mu.Unlock()
	<-l.sem
}

type limitedConn struct {
	net.Conn
	id       uint64
	owner    *connLimiter
	released sync.Once
}

func (c *limitedConn) Read(b []byte) (int, error) {
	c.owner.touch(c)
	return c.Conn.Read(b)
}

func (c *limitedConn) Close() error {
	err := c.Conn.Close()
	c.released.Do(func() { c.owner.release(c) })
	return err
}
