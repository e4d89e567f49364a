package wallet

import "fmt"

// ReadyState is the detection state of a wallet. It starts at Loading and moves exactly once to
// Found or NotFound.
type ReadyState int

const (
	ReadyStateLoading ReadyState = iota
	ReadyStateFound
	ReadyStateNotFound
)

func (s ReadyState) String() string {
	switch s {
	case ReadyStateLoading:
		return "Loading"
	case ReadyStateFound:
		return "Found"
	case ReadyStateNotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("ReadyState(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ReadyState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
