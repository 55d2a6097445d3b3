package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/focus"
	"github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/store"
)

// Listener is called with a copy of the diagram after every change.
type Listener func(d *model.Diagram)

// Session edits a single diagram. It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	d     *model.Diagram
	dirty bool

	store  store.Store
	now    func() time.Time
	logger *log.Logger

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	focus focus.Slot
}

// Option configures a [Session].
type Option func(*Session)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger used for save and import events.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New starts a session on d. A nil d starts an empty diagram named
// "Untitled". The store may be nil for sessions that are never saved.
func New(d *model.Diagram, st store.Store, opts ...Option) *Session {
	s := &Session{
		store:     st,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if d == nil {
		d = model.New("Untitled", s.now())
	}
	s.d = d.Clone()
	return s
}

// Open loads the diagram with id from st.
func Open(ctx context.Context, st store.Store, id string, opts ...Option) (*Session, error) {
	d, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return New(d, st, opts...), nil
}

// Diagram returns a copy of the current diagram.
func (s *Session) Diagram() *model.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Clone()
}

// ID returns the diagram id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.ID
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// mutate applies fn under the lock. Listeners run after the lock is
// released, each with its own copy.
func (s *Session) mutate(fn func(d *model.Diagram) error) error {
	s.mu.Lock()
	if err := fn(s.d); err != nil {
		s.mu.Unlock()
		return err
	}
	s.dirty = true
	snapshot := s.d.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

func (s *Session) notify(d *model.Diagram) {
	s.listenersMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.listenersMu.Unlock()

	for i, fn := range fns {
		if i > 0 {
			d = d.Clone()
		}
		fn(d)
	}
}

// Rename sets the diagram name and description.
func (s *Session) Rename(name, description string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	return s.mutate(func(d *model.Diagram) error {
		d.Name = name
		d.Description = description
		return nil
	})
}

// Save stamps updatedAt and writes the diagram to the store. On failure
// the previous updatedAt is restored and the edits are kept.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New(errors.ErrCodeUnsupported, "session has no store")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.d.UpdatedAt
	s.d.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.store.Put(ctx, s.d); err != nil {
		s.d.UpdatedAt = prev
		s.logger.Warn("save failed", "id", s.d.ID, "err", err)
		if errors.GetCode(err) == "" {
			return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "save diagram %s", s.d.ID)
		}
		return err
	}
	s.dirty = false
	s.logger.Debug("saved diagram", "id", s.d.ID, "updated_at", s.d.UpdatedAt)
	return nil
}

// Import replaces the diagram with the parsed document, keeping the
// current id. A document that fails to parse leaves the diagram untouched.
func (s *Session) Import(data []byte, format io.Format) error {
	now := s.now()
	next, err := io.Import(data, format, now)
	if err != nil {
		return err
	}
	return s.mutate(func(d *model.Diagram) error {
		next.ID = d.ID
		next.UpdatedAt = now.UTC().Truncate(time.Millisecond)
		*d = *next
		s.logger.Debug("imported diagram", "id", d.ID, "actors", len(d.Actors), "flows", len(d.Flows))
		return nil
	})
}

// Export encodes the current diagram.
func (s *Session) Export(format io.Format) ([]byte, error) {
	return io.Export(s.Diagram(), format)
}

// Layout computes the layout of the current diagram.
func (s *Session) Layout(opts ...layout.Option) layout.Layout {
	return layout.Compute(s.Diagram(), opts...)
}

// RequestFocus queues a one-shot request to bring flowID into view. It
// reports false, leaving any pending request in place, when the flow does
// not exist.
func (s *Session) RequestFocus(flowID string) bool {
	s.mu.Lock()
	_, ok := model.NewIndex(s.d).Flow(flowID)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.focus.Request(flowID)
	return true
}

// TakeFocus consumes the pending focus request.
func (s *Session) TakeFocus() (focus.Request, bool) {
	return s.focus.Take()
}
