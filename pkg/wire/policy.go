package wire

// Policy is the internal reliability policy a channel is opened with. It is
// coarser than ChannelType: several wire channel types collapse onto the
// same policy (RELIABLE and RELIABLE_STREAM both mean RELIABLE).
type Policy uint8

// Reliability policies.
const (
	PolicyReliable Policy = iota
	PolicyPartialRexmit
	PolicyPartialTimed
)

func (p Policy) String() string {
	switch p {
	case PolicyReliable:
		return "reliable"
	case PolicyPartialRexmit:
		return "partial-rexmit"
	case PolicyPartialTimed:
		return "partial-timed"
	default:
		return "unknown"
	}
}

// PolicyFromChannelType maps a wire ChannelType to the internal Policy, per
// the table in the establishment protocol. It returns false for channel
// types outside {0..4}.
func PolicyFromChannelType(ct ChannelType) (Policy, bool) {
	switch ct {
	case ChannelTypeReliable, ChannelTypeReliableStream:
		return PolicyReliable, true
	case ChannelTypeUnreliable, ChannelTypePartialTimed:
		return PolicyPartialTimed, true
	case ChannelTypePartialRexmit:
		return PolicyPartialRexmit, true
	default:
		return 0, false
	}
}

// ChannelTypeFromPolicy maps an internal Policy back to the wire ChannelType
// used when encoding an OpenRequest. Each of the three known policies has
// exactly one canonical wire representation; any other value returns false.
func ChannelTypeFromPolicy(p Policy) (ChannelType, bool) {
	switch p {
	case PolicyReliable:
		return ChannelTypeReliable, true
	case PolicyPartialTimed:
		return ChannelTypePartialTimed, true
	case PolicyPartialRexmit:
		return ChannelTypePartialRexmit, true
	default:
		return 0, false
	}
}
