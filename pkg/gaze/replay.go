package gaze

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ReplaySource plays back recorded pairs from JSON lines, one Matched per
// line. When paced, items are released at the rate their gaze timestamps
// imply; otherwise as fast as they are asked for. It returns io.EOF once
// the recording is exhausted.
type ReplaySource struct {
	scanner *bufio.Scanner
	paced   bool
	now     func() time.Time

	line    int
	pending *Matched

	started   bool
	startWall time.Time
	startTS   time.Time
}

// NewReplaySource reads a recording from r.
func NewReplaySource(r io.Reader, paced bool) *ReplaySource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	return &ReplaySource{
		scanner: sc,
		paced:   paced,
		now:     time.Now,
	}
}

// ReceiveMatched returns the next recorded pair.
func (s *ReplaySource) ReceiveMatched(ctx context.Context, timeout time.Duration) (*Matched, error) {
	if s.pending == nil {
		m, err := s.next()
		if err != nil {
			return nil, err
		}
		s.pending = m
	}

	if s.paced {
		ts := s.pending.Gaze.Time()
		if !s.started {
			s.started = true
			s.startWall = s.now()
			s.startTS = ts
		}
		due := s.startWall.Add(ts.Sub(s.startTS))
		wait := due.Sub(s.now())
		if wait > timeout {
			if err := sleep(ctx, timeout); err != nil {
				return nil, err
			}
			return nil, ErrNoData
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	m := s.pending
	s.pending = nil
	return m, nil
}

func (s *ReplaySource) next() (*Matched, error) {
	for s.scanner.Scan() {
		s.line++
		b := s.scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var m Matched
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("replay line %d: %w", s.line, err)
		}
		return &m, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return nil, io.EOF
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder writes pairs as JSON lines readable by ReplaySource.
type Recorder struct {
	enc *json.Encoder
}

// NewRecorder writes a recording to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w)}
}

// Record appends one pair.
func (r *Recorder) Record(m *Matched) error {
	return r.enc.Encode(m)
}
