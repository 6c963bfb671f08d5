// Package navigator owns which view is active, loads each view's data on
// demand and keeps the back stack for detail views.
package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// LoadFunc produces a view's data for the given parameters.
type LoadFunc func(ctx context.Context, p Params) (any, error)

// Descriptor tells the navigator how to fill one view.
type Descriptor struct {
	Title string
	Load  LoadFunc
	// Apply, when set, runs once a load's result becomes the view's data.
	// Superseded results never reach it. It runs under the navigator's lock
	// and must not call back into the navigator.
	Apply func(p Params, data any)
}

// Catalog maps every view to its descriptor.
type Catalog map[View]Descriptor

// Snapshot is a copy of the navigator state handed to renderers. Data is
// set only when it was loaded for Params. Version grows with every state
// change, so of two snapshots the one with the lower Version is stale.
type Snapshot struct {
	Version uint64
	Active  View
	Params  Params
	Status  Status
	Data    any
	Message string
	// Return is the frame Back would restore, if any.
	Return *Intent
}

// Observer is called after every state change, outside the navigator's lock.
// Observers can run concurrently and out of order; compare Versions.
type Observer func(Snapshot)

type viewState struct {
	params  Params
	seq     uint64
	status  Status
	data    any
	message string
	cancel  context.CancelFunc

	resident       bool
	residentParams Params
}

// Navigator is safe for concurrent use. Loads run in their own goroutines;
// a load is discarded on completion when a newer navigation to the same view
// was issued after it started.
type Navigator struct {
	catalog   Catalog
	logger    *slog.Logger
	observers []Observer

	mu      sync.Mutex
	version uint64
	active  View
	states [viewCount]viewState
	stack  []Intent
	loads  sync.WaitGroup
}

// Option configures a Navigator.
type Option func(*Navigator)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) { n.logger = logger }
}

// WithObserver registers fn to receive snapshots.
func WithObserver(fn Observer) Option {
	return func(n *Navigator) { n.observers = append(n.observers, fn) }
}

// New creates a navigator whose active view is Scores, not yet loaded.
func New(catalog Catalog, opts ...Option) (*Navigator, error) {
	for v := Scores; v < viewCount; v++ {
		if d, ok := catalog[v]; !ok || d.Load == nil {
			return nil, fmt.Errorf("catalog has no loader for the %s view", v)
		}
	}

	n := &Navigator{
		catalog: catalog,
		logger:  slog.Default(),
		active:  Scores,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("component", "navigator")
	return n, nil
}

// Navigate makes intent's view active and starts loading its data unless
// the data for exactly these parameters is already resident. Opening a
// detail view remembers the current view for Back; opening any other view
// clears that history. ctx bounds the background load.
func (n *Navigator) Navigate(ctx context.Context, intent Intent) {
	n.mu.Lock()
	if intent.View.IsDetail() {
		current := Intent{View: n.active, Params: n.states[n.active].params}
		if current != intent {
			n.stack = append(n.stack, current)
		}
	} else {
		n.stack = nil
	}
	n.enter(ctx, intent, false)
	snap := n.changedLocked()
	n.mu.Unlock()

	n.logger.Debug("navigate", "intent", intent.String())
	n.notify(snap)
}

// Back returns to the view that opened the active detail view, with the
// parameters it had. It reports false when there is nothing to go back to.
func (n *Navigator) Back(ctx context.Context) bool {
	n.mu.Lock()
	if len(n.stack) == 0 {
		n.mu.Unlock()
		return false
	}
	frame := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	n.enter(ctx, frame, false)
	snap := n.changedLocked()
	n.mu.Unlock()

	n.logger.Debug("back", "to", frame.String())
	n.notify(snap)
	return true
}

// Refresh reloads the active view for its current parameters.
func (n *Navigator) Refresh(ctx context.Context) {
	n.mu.Lock()
	n.enter(ctx, Intent{View: n.active, Params: n.states[n.active].params}, true)
	snap := n.changedLocked()
	n.mu.Unlock()

	n.notify(snap)
}

// Snapshot returns the current state of the active view.
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

// State returns the last known state of any view, active or not.
func (n *Navigator) State(v View) Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	st := &n.states[v]
	return Snapshot{Version: n.version, Active: n.active, Params: st.params, Status: st.status, Data: st.visibleData(), Message: st.message}
}

// Title returns the catalog title of v.
func (n *Navigator) Title(v View) string {
	if t := n.catalog[v].Title; t != "" {
		return t
	}
	return v.String()
}

// Wait blocks until every load started so far has finished.
func (n *Navigator) Wait() {
	n.loads.Wait()
}

// enter activates intent's view. Must be called with mu held.
func (n *Navigator) enter(ctx context.Context, intent Intent, force bool) {
	n.active = intent.View
	st := &n.states[intent.View]

	if !force {
		if st.status == Loading && st.params == intent.Params {
			return
		}
		if st.resident && st.residentParams == intent.Params {
			// Supersede whatever else was loading for this view.
			st.seq++
			if st.cancel != nil {
				st.cancel()
				st.cancel = nil
			}
			st.params = intent.Params
			st.status = Ready
			st.message = ""
			return
		}
	}

	n.startLoad(ctx, intent.View, st, intent.Params)
}

// startLoad must be called with mu held.
func (n *Navigator) startLoad(ctx context.Context, view View, st *viewState, params Params) {
	st.seq++
	seq := st.seq
	if st.cancel != nil {
		st.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	st.params = params
	st.status = Loading
	st.message = ""

	load := n.catalog[view].Load
	n.loads.Add(1)
	go func() {
		defer n.loads.Done()
		data, err := load(loadCtx, params)
		n.finish(view, seq, params, data, err)
	}()
}

func (n *Navigator) finish(view View, seq uint64, params Params, data any, err error) {
	n.mu.Lock()
	st := &n.states[view]
	if st.seq != seq {
		n.mu.Unlock()
		n.logger.Debug("discarding superseded load", "view", view.String(), "seq", seq)
		return
	}

	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	if err != nil {
		st.status = Failed
		st.message = Describe(err)
		n.logger.Warn("load failed", "view", view.String(), "error", err)
	} else {
		st.status = Ready
		st.data = data
		st.resident = true
		st.residentParams = params
		if apply := n.catalog[view].Apply; apply != nil {
			apply(params, data)
		}
	}
	snap := n.changedLocked()
	n.mu.Unlock()

	n.notify(snap)
}

// changedLocked records a state change and returns the new snapshot.
func (n *Navigator) changedLocked() Snapshot {
	n.version++
	return n.snapshotLocked()
}

func (n *Navigator) snapshotLocked() Snapshot {
	st := &n.states[n.active]
	snap := Snapshot{
		Version: n.version,
		Active:  n.active,
		Params:  st.params,
		Status:  st.status,
		Data:    st.visibleData(),
		Message: st.message,
	}
	if len(n.stack) > 0 {
		frame := n.stack[len(n.stack)-1]
		snap.Return = &frame
	}
	return snap
}

// visibleData hides data that was loaded for other parameters.
func (st *viewState) visibleData() any {
	if st.resident && st.residentParams == st.params {
		return st.data
	}
	return nil
}

func (n *Navigator) notify(snap Snapshot) {
	for _, fn := range n.observers {
		fn(snap)
	}
}
