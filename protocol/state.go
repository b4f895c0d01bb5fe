package protocol

import "fmt"

// State is the connection phase that decides how a packet id is interpreted.
type State uint8

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StatePlay

	stateCount
)

var stateNames = [stateCount]string{
	StateHandshake: "Handshake",
	StateStatus:    "Status",
	StateLogin:     "Login",
	StatePlay:      "Play",
}

// States returns every state in protocol order.
func States() []State {
	return []State{StateHandshake, StateStatus, StateLogin, StatePlay}
}

func (s State) Valid() bool {
	return s < stateCount
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return stateNames[s]
}

// ParseState maps a state name as written in the packet schema back to a State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}
