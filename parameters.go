package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// OpenParameters describes the configuration a caller requests when opening
// a channel via PeerConnection.OpenChannel.
type OpenParameters struct {
	Unordered bool
	Policy    wire.Policy
	Value     uint32
}

// Validate enforces spec.md §4.4's open_channel pre-conditions: policy must
// be one of the three known policies, and RELIABLE must carry a zero value.
func (p OpenParameters) Validate() error {
	switch p.Policy {
	case wire.PolicyReliable:
		if p.Value != 0 {
			return ErrBadPolicyValue
		}
	case wire.PolicyPartialRexmit, wire.PolicyPartialTimed:
	default:
		return ErrInvalidArgument
	}
	return nil
}
