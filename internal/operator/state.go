package operator

// State is the lifecycle state of a SourceOperator.
type State int32

const (
	NotStarted State = iota
	Running
	Exhausted
	Failed
	Cancelled
)

// Terminal reports whether no further pulls are allowed.
func (s State) Terminal() bool {
	return s == Exhausted || s == Failed || s == Cancelled
}

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// States lists every state in lifecycle order.
var States = []State{NotStarted, Running, Exhausted, Failed, Cancelled}
