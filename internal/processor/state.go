package processor

// State is a step of the pipeline state machine.
type State int

const (
	Idle State = iota
	FieldsResolved
	Filtered
	Capped
	Processing
	Written
	Reported
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FieldsResolved:
		return "fields_resolved"
	case Filtered:
		return "filtered"
	case Capped:
		return "capped"
	case Processing:
		return "processing"
	case Written:
		return "written"
	case Reported:
		return "reported"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == Capped || s == Reported || s == Failed
}
