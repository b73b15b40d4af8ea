package worker

// State is the worker's position in the request state machine.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateConverting
	StateResponding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateConverting:
		return "converting"
	case StateResponding:
		return "responding"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of the session.
type Status struct {
	Running    bool
	State      State
	QueueDepth int
	Handlers   int
	Processed  int64
	Failed     int64
}
