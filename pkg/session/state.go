package session

// State is the Node's connection lifecycle state (§4.3).
type State int

const (
	StateOffline State = iota
	StateConnecting
	StateSubscribing
	StateOnline
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateConnecting:
		return "connecting"
	case StateSubscribing:
		return "subscribing"
	case StateOnline:
		return "online"
	case StateTerminating:
		return "terminating"
	default:
		return "unknown"
	}
}
