package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// ChannelStatus is one channel's row in a Status snapshot.
type ChannelStatus struct {
	ID        uint16
	State     State
	IStream   uint16
	OStream   uint16
	Unordered bool
	Policy    wire.Policy
	Value     uint32
}

// Status is the result of the status() operation (§6.2): the association's
// coarse state and negotiated stream counts, plus every non-CLOSED channel.
type Status struct {
	AssociationState AssociationState
	InboundStreams   uint16
	OutboundStreams  uint16
	Channels         []ChannelStatus
}

// Status implements §6.2's status() operation.
func (pc *PeerConnection) Status() Status {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	st := Status{
		AssociationState: pc.associationState,
		InboundStreams:   pc.inboundStreams,
		OutboundStreams:  pc.transport.QueryOutboundStreamCount(),
	}

	for i := range pc.channels {
		c := &pc.channels[i]
		if c.state == StateClosed {
			continue
		}
		st.Channels = append(st.Channels, ChannelStatus{
			ID:        c.id,
			State:     c.state,
			IStream:   c.iStream,
			OStream:   c.oStream,
			Unordered: c.unordered,
			Policy:    c.policy,
			Value:     c.value,
		})
	}

	return st
}
