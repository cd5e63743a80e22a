package graphics

// EventKind identifies what woke the event loop.
type EventKind int

const (
	// Redraw asks for a new frame to be presented.
	Redraw EventKind = iota
	// Resize reports a new framebuffer size in Width/Height.
	Resize
	// Close reports that the user asked for the window to close.
	Close
)

func (k EventKind) String() string {
	switch k {
	case Redraw:
		return "redraw"
	case Resize:
		return "resize"
	case Close:
		return "close"
	}
	return "unknown"
}

// Event is a single window event.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

// Context defines the interface for an OpenGL context and its event source.
type Context interface {
	// MakeCurrent binds the context to the calling thread.
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// WaitEvent blocks until an event is available.
	WaitEvent() Event
	// RequestRedraw queues a Redraw event.
	RequestRedraw()
	SwapBuffers()
	GetFramebufferSize() (int, int)
}

// EventQueue is a FIFO of pending events.
type EventQueue struct {
	events []Event
}

func (q *EventQueue) Push(e Event) {
	q.events = append(q.events, e)
}

func (q *EventQueue) Pop() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

func (q *EventQueue) Len() int {
	return len(q.events)
}
