package gaze

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestReplaySource_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	for i := 0; i < 3; i++ {
		m := &Matched{
			Frame: &Frame{TimestampUnixSeconds: float64(i), Width: 1600, Height: 1200},
			Gaze:  Sample{X: float64(i) / 10, Y: 0.5, TimestampUnixSeconds: float64(i)},
		}
		if err := rec.Record(m); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	src := NewReplaySource(&buf, false)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m, err := src.ReceiveMatched(ctx, time.Millisecond)
		if err != nil {
			t.Fatalf("item %d: error = %v", i, err)
		}
		if m.Gaze.TimestampUnixSeconds != float64(i) || m.Frame == nil || m.Frame.Width != 1600 {
			t.Errorf("item %d = %+v", i, m)
		}
	}

	if _, err := src.ReceiveMatched(ctx, time.Millisecond); !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
}

func TestReplaySource_SkipsBlankLines(t *testing.T) {
	in := "\n{\"gaze\":{\"x\":0.1,\"y\":0.2,\"timestamp_unix_seconds\":1}}\n\n"
	src := NewReplaySource(strings.NewReader(in), false)

	m, err := src.ReceiveMatched(context.Background(), time.Millisecond)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if m.Gaze.X != 0.1 || m.Frame != nil {
		t.Errorf("got %+v", m)
	}
}

func TestReplaySource_BadLine(t *testing.T) {
	src := NewReplaySource(strings.NewReader("not json\n"), false)
	if _, err := src.ReceiveMatched(context.Background(), time.Millisecond); err == nil {
		t.Error("expected parse error")
	}
}

func TestReplaySource_Paced(t *testing.T) {
	in := `{"gaze":{"x":0.1,"y":0.1,"timestamp_unix_seconds":10}}
{"gaze":{"x":0.2,"y":0.2,"timestamp_unix_seconds":15}}
`
	src := NewReplaySource(strings.NewReader(in), true)
	ctx := context.Background()

	if _, err := src.ReceiveMatched(ctx, 10*time.Millisecond); err != nil {
		t.Fatalf("first item: %v", err)
	}
	// The second item is due five seconds later.
	if _, err := src.ReceiveMatched(ctx, 10*time.Millisecond); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData while waiting", err)
	}
}

func TestReplaySource_Cancelled(t *testing.T) {
	in := `{"gaze":{"timestamp_unix_seconds":0}}
{"gaze":{"timestamp_unix_seconds":60}}
`
	src := NewReplaySource(strings.NewReader(in), true)
	ctx, cancel := context.WithCancel(context.Background())
	src.ReceiveMatched(ctx, time.Millisecond)
	cancel()

	if _, err := src.ReceiveMatched(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestReplaySource_PacedFractionalTimestamps(t *testing.T) {
	in := `{"gaze":{"timestamp_unix_seconds":10.25}}
{"gaze":{"timestamp_unix_seconds":10.75}}
`
	src := NewReplaySource(strings.NewReader(in), true)
	clock := time.Unix(1700000000, 0)
	src.now = func() time.Time { return clock }
	ctx := context.Background()

	if _, err := src.ReceiveMatched(ctx, time.Millisecond); err != nil {
		t.Fatalf("first item: %v", err)
	}
	clock = clock.Add(490 * time.Millisecond)
	if _, err := src.ReceiveMatched(ctx, time.Millisecond); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData 10ms before the item is due", err)
	}
	clock = clock.Add(10 * time.Millisecond)
	m, err := src.ReceiveMatched(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("second item: %v", err)
	}
	if m.Gaze.TimestampUnixSeconds != 10.75 {
		t.Errorf("timestamp = %v, want 10.75", m.Gaze.TimestampUnixSeconds)
	}
}
