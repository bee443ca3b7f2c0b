// Package replay feeds a tracking engine from a JSON-lines event log.
//
// Each line is one domain.EngineEvent, for example:
//
//	{"type":"engine-available"}
//	{"type":"engine-ready","delay":"500ms"}
//	{"type":"target-found","targetId":"personne"}
//
// Blank lines and lines starting with '#' are ignored. In follow mode the
// log is watched with fsnotify and new lines are replayed as they are appended.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/arvision/internal/adapters/driven/engine/relay"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Engine is a relay engine driven by a recorded event log.
type Engine struct {
	*relay.Engine

	path   string
	reader io.Reader
	follow bool
	speed  float64
	sink   func(domain.EngineEvent) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithFollow keeps reading appended lines after the end of the file.
func WithFollow(follow bool) Option {
	return func(e *Engine) {
		e.follow = follow
	}
}

// WithSpeed scales event delays; 2 replays twice as fast. Non-positive values are ignored.
func WithSpeed(speed float64) Option {
	return func(e *Engine) {
		if speed > 0 {
			e.speed = speed
		}
	}
}

// WithSink sends replayed events to sink instead of the embedded engine,
// e.g. to route them to a session's engine through a relay hub.
func WithSink(sink func(domain.EngineEvent) error) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// NewFromFile creates an engine replaying the log at path.
func NewFromFile(path string, opts ...Option) *Engine {
	e := &Engine{Engine: relay.New(), path: path, speed: 1}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = e.Emit
	}
	return e
}

// NewFromReader creates an engine replaying r until EOF. Follow mode does not apply.
func NewFromReader(r io.Reader, opts ...Option) *Engine {
	e := &Engine{Engine: relay.New(), reader: r, speed: 1}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = e.Emit
	}
	e.follow = false
	return e
}

// Run replays the log. It returns when the log ends (or, in follow mode,
// when ctx is done). Malformed lines are logged and skipped.
func (e *Engine) Run(ctx context.Context) error {
	if e.reader != nil {
		_, err := e.replay(ctx, bufio.NewReader(e.reader), 0, nil)
		return err
	}

	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	if !e.follow {
		_, err := e.replay(ctx, bufio.NewReader(f), 0, nil)
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch event log: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(e.path); err != nil {
		return fmt.Errorf("watch event log: %w", err)
	}

	r := bufio.NewReader(f)
	var pending []byte
	line := 0
	for {
		line, err = e.replay(ctx, r, line, &pending)
		if err != nil {
			return err
		}
		if err := waitForWrite(ctx, watcher); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// replay emits complete lines from r until EOF. In follow mode a trailing
// partial line is kept in pending for the next call.
func (e *Engine) replay(ctx context.Context, r *bufio.Reader, line int, pending *[]byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return line, nil
		}
		chunk, err := r.ReadBytes('\n')
		if pending != nil && len(*pending) > 0 {
			chunk = append(*pending, chunk...)
			*pending = nil
		}
		if errors.Is(err, io.EOF) {
			if pending != nil {
				*pending = chunk
				return line, nil
			}
			if len(bytes.TrimSpace(chunk)) > 0 {
				line++
				e.handle(ctx, line, chunk)
			}
			return line, nil
		}
		if err != nil {
			return line, fmt.Errorf("read event log: %w", err)
		}
		line++
		e.handle(ctx, line, chunk)
	}
}

func (e *Engine) handle(ctx context.Context, line int, raw []byte) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '#' {
		return
	}
	var ev domain.EngineEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logger.Warn("event log line %d: %v", line, err)
		return
	}
	if err := ev.Validate(); err != nil {
		logger.Warn("event log line %d: %v", line, err)
		return
	}
	if ev.Delay > 0 {
		delay := time.Duration(float64(ev.Delay) / e.speed)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	logger.Debug("replay line %d: %s", line, ev.Type)
	if err := e.sink(ev); err != nil {
		logger.Warn("event log line %d: %v", line, err)
	}
}

func waitForWrite(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return io.EOF
			}
			if ev.Has(fsnotify.Write) {
				return nil
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return fmt.Errorf("event log %s was removed", ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return io.EOF
			}
			return fmt.Errorf("watch event log: %w", err)
		}
	}
}
