// Package transport delivers datagrams to the downstream application.
// Delivery is best effort: no acknowledgement, ordering or retry.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrNotConnected is returned by Send before Dial or after Close.
var ErrNotConnected = errors.New("transport: not connected")

// Sink accepts encoded datagrams.
type Sink interface {
	Send(b []byte) error
	Close() error
}

// UDPSender sends datagrams to one remote listener over a connected UDP
// socket. It is safe for concurrent use.
type UDPSender struct {
	addr string

	mu   sync.RWMutex
	conn *net.UDPConn

	sent   atomic.Uint64
	failed atomic.Uint64
}

// Dial resolves host:port and connects a UDP socket to it. No packets are
// exchanged; an absent listener surfaces later as send errors.
func Dial(host string, port int) (*UDPSender, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &UDPSender{addr: addr, conn: conn}, nil
}

// Addr returns the remote address.
func (s *UDPSender) Addr() string {
	return s.addr
}

// Send writes one datagram.
func (s *UDPSender) Send(b []byte) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}
	if _, err := conn.Write(b); err != nil {
		s.failed.Add(1)
		return fmt.Errorf("send to %s: %w", s.addr, err)
	}
	s.sent.Add(1)
	return nil
}

// SendJSON encodes v and sends it as one datagram.
func (s *UDPSender) SendJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode datagram: %w", err)
	}
	return s.Send(b)
}

// Stats returns the number of sent and failed datagrams.
func (s *UDPSender) Stats() (sent, failed uint64) {
	return s.sent.Load(), s.failed.Load()
}

// Close closes the socket. Further sends return ErrNotConnected.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
