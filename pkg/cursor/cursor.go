// Package cursor moves the desktop pointer and issues clicks.
//
// Injecting input into the operating system is left to the embedding
// application; the controllers here record or log the requested actions.
package cursor

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-gazepointer/internal/log"
)

// Controller drives the desktop pointer.
type Controller interface {
	MoveTo(x, y int) error
	Click(x, y int) error
}

// LogController logs every action.
type LogController struct {
	logger *slog.Logger
}

// NewLogController creates a controller that logs to the package logger.
func NewLogController() *LogController {
	return &LogController{logger: log.With("component", "cursor")}
}

// MoveTo logs a pointer move at debug level.
func (c *LogController) MoveTo(x, y int) error {
	c.logger.Debug("move", "x", x, "y", y)
	return nil
}

// Click logs a left click.
func (c *LogController) Click(x, y int) error {
	c.logger.Info("click", "x", x, "y", y)
	return nil
}

// Action is one recorded controller call.
type Action struct {
	Click bool
	X, Y  int
}

// Recorder keeps every action in memory.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

func (r *Recorder) MoveTo(x, y int) error {
	r.add(Action{X: x, Y: y})
	return nil
}

func (r *Recorder) Click(x, y int) error {
	r.add(Action{Click: true, X: x, Y: y})
	return nil
}

func (r *Recorder) add(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Clicks returns only the recorded clicks.
func (r *Recorder) Clicks() []Action {
	var out []Action
	for _, a := range r.Actions() {
		if a.Click {
			out = append(out, a)
		}
	}
	return out
}
