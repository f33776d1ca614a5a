package gaze

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/rtp"

	"github.com/teslashibe/go-gazepointer/pkg/debug"
)

// RTPClockRate is the RTP timestamp rate of the gaze stream.
const RTPClockRate = 90000

// maxPacketSize bounds a single gaze datagram.
const maxPacketSize = 1500

// RTPSource reads gaze packets from an RTP stream delivered over UDP.
// Sample timestamps are derived from the RTP clock, anchored at the wall
// time the first packet arrived. Frames are not carried; pair it with a
// mapper that does not need scene video.
type RTPSource struct {
	conn net.PacketConn
	now  func() time.Time // anchors the RTP clock

	mu      sync.Mutex
	started bool
	base    float64 // unix seconds at first packet
	lastTS  uint32
	elapsed int64 // extended RTP ticks since first packet
	packets uint64
	dropped uint64
	buf     []byte
	closed  bool
}

// NewRTPSource wraps a packet connection carrying the RTP gaze stream.
func NewRTPSource(conn net.PacketConn) *RTPSource {
	return &RTPSource{
		conn: conn,
		now:  time.Now,
		buf:  make([]byte, maxPacketSize),
	}
}

// ListenRTP opens a UDP listener on addr and returns a source reading it.
func ListenRTP(addr string) (*RTPSource, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen rtp %s: %w", addr, err)
	}
	return NewRTPSource(conn), nil
}

// Addr returns the local address packets should be sent to.
func (s *RTPSource) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// ReceiveMatched reads one RTP packet and decodes its gaze payload.
// Packets that fail to decode are counted and skipped.
func (s *RTPSource) ReceiveMatched(ctx context.Context, timeout time.Duration) (*Matched, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, _, err := s.conn.ReadFrom(s.buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil, ErrNoData
			}
			return nil, fmt.Errorf("read rtp: %w", err)
		}

		var pkt rtp.Packet
		if err := pkt.Unmarshal(s.buf[:n]); err != nil {
			s.dropped++
			debug.Log("rtp: dropped packet: %v\n", err)
			continue
		}

		sample, err := DecodePayload(pkt.Payload)
		if err != nil {
			s.dropped++
			debug.Log("rtp: dropped %d byte payload: %v\n", len(pkt.Payload), err)
			continue
		}

		s.packets++
		sample.TimestampUnixSeconds = s.timestamp(pkt.Timestamp)
		return &Matched{Gaze: sample}, nil
	}
}

// timestamp converts an RTP timestamp to unix seconds. Differences are
// taken as signed 32-bit so wraparound and slight reordering both work.
func (s *RTPSource) timestamp(ts uint32) float64 {
	if !s.started {
		s.started = true
		s.base = float64(s.now().UnixNano()) / 1e9
		s.lastTS = ts
		return s.base
	}
	s.elapsed += int64(int32(ts - s.lastTS))
	s.lastTS = ts
	return s.base + float64(s.elapsed)/RTPClockRate
}

// Stats returns decoded and dropped packet counts.
func (s *RTPSource) Stats() (packets, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packets, s.dropped
}

// Close closes the underlying connection.
func (s *RTPSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}
