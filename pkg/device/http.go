package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-gazepointer/internal/httpc"
	"github.com/teslashibe/go-gazepointer/internal/log"
	"github.com/teslashibe/go-gazepointer/pkg/gaze"
)

// Companion app endpoints.
const (
	statusPath      = "/api/status"
	calibrationPath = "/calibration.bin"
)

// Status is the subset of the companion app status document used here.
type Status struct {
	Result []StatusItem `json:"result"`
}

// StatusItem is one component entry of the status document.
type StatusItem struct {
	Model string          `json:"model"`
	Data  json.RawMessage `json:"data"`
}

type phoneData struct {
	DeviceName string `json:"device_name"`
	DeviceID   string `json:"device_id"`
}

// Phone returns the device name and id from the status document.
func (s Status) Phone() (name, id string, ok bool) {
	for _, item := range s.Result {
		if item.Model != "Phone" {
			continue
		}
		var p phoneData
		if err := json.Unmarshal(item.Data, &p); err != nil {
			return "", "", false
		}
		return p.DeviceName, p.DeviceID, true
	}
	return "", "", false
}

// HTTPDiscoverer queries a fixed list of companion app addresses and picks
// the first that answers. Gaze is read from Source, which the caller binds
// to the device's stream.
type HTTPDiscoverer struct {
	// Hosts are base URLs or host:port pairs.
	Hosts  []string
	Source gaze.Source
	Client *http.Client
}

// DiscoverOne queries all hosts concurrently for at most maxSearch.
func (h *HTTPDiscoverer) DiscoverOne(ctx context.Context, maxSearch time.Duration) (Device, error) {
	if len(h.Hosts) == 0 {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, maxSearch)
	defer cancel()

	client := h.Client
	if client == nil {
		client = httpc.Client
	}

	found := make(chan *HTTPDevice, len(h.Hosts))
	for _, host := range h.Hosts {
		go func(base string) {
			var st Status
			if err := httpc.GetJSON(ctx, client, base+statusPath, &st); err != nil {
				log.Debug("status request failed", "host", base, "error", err)
				found <- nil
				return
			}
			found <- newHTTPDevice(base, st, h.Source, client)
		}(baseURL(host))
	}

	for range h.Hosts {
		select {
		case <-ctx.Done():
			return nil, ErrNotFound
		case dev := <-found:
			if dev != nil {
				return dev, nil
			}
		}
	}
	return nil, ErrNotFound
}

// HTTPDevice is a device reached through its companion app.
type HTTPDevice struct {
	gaze.Source

	base   string
	name   string
	id     string
	client *http.Client
}

func newHTTPDevice(base string, st Status, src gaze.Source, client *http.Client) *HTTPDevice {
	name, id, ok := st.Phone()
	if !ok || name == "" {
		name = base
	}
	return &HTTPDevice{Source: src, base: base, name: name, id: id, client: client}
}

// Name returns the device name reported by the companion app.
func (d *HTTPDevice) Name() string { return d.name }

// Calibration downloads the calibration blob.
func (d *HTTPDevice) Calibration(ctx context.Context) (Calibration, error) {
	raw, err := httpc.GetBytes(ctx, d.client, d.base+calibrationPath)
	if err != nil {
		return Calibration{}, fmt.Errorf("fetch calibration: %w", err)
	}
	if len(raw) == 0 {
		return Calibration{}, ErrNoCalibration
	}
	return Calibration{Serial: d.id, Raw: raw}, nil
}

// Close closes the gaze source when it is closable.
func (d *HTTPDevice) Close() error {
	return FromSource(d.name, d.Source).Close()
}

func baseURL(host string) string {
	host = strings.TrimRight(host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host
}
