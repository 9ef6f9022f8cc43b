package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// Channel is one record in a PeerConnection's channel table. Its id is fixed
// for the table's lifetime; every other field is cleared back to its zero
// value whenever the channel returns to StateClosed (invariant I5).
type Channel struct {
	id uint16

	state     State
	policy    wire.Policy
	value     uint32
	unordered bool

	iStream uint16
	oStream uint16
}

// ID returns the channel's dense table index.
func (c *Channel) ID() uint16 { return c.id }

// State returns the channel's current lifecycle state.
func (c *Channel) State() State { return c.state }

// Policy returns the channel's reliability policy.
func (c *Channel) Policy() wire.Policy { return c.policy }

// Value returns the reliability value (retransmit cap or TTL ms). It is 0
// for a locally opened PolicyReliable channel; a peer-opened channel carries
// whatever reliability parameter the peer's OpenRequest sent.
func (c *Channel) Value() uint32 { return c.value }

// Unordered reports whether messages on this channel may be delivered
// out of order.
func (c *Channel) Unordered() bool { return c.unordered }

// IStream returns the bound inbound stream id, or 0 if unbound.
func (c *Channel) IStream() uint16 { return c.iStream }

// OStream returns the bound outbound stream id, or 0 if unbound.
func (c *Channel) OStream() uint16 { return c.oStream }

// reset clears a channel back to its CLOSED resting state, preserving only
// its id. Callers must have already unbound it from both stream indexes.
func (c *Channel) reset() {
	id := c.id
	*c = Channel{id: id}
}
