package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// queueReset appends s to pendingResets unless it is already present (I8,
// L4). Callers hold pc.mu.
func (pc *PeerConnection) queueReset(s uint16) {
	for _, existing := range pc.pendingResets {
		if existing == s {
			return
		}
	}
	pc.pendingResets = append(pc.pendingResets, s)
}

// flushResets implements §4.5: ask the transport to reset every pending
// outbound stream in one call. On success the list is cleared; on failure it
// is left intact for the next event to retry.
func (pc *PeerConnection) flushResets() {
	if len(pc.pendingResets) == 0 {
		return
	}
	if err := pc.transport.RequestStreamReset(pc.pendingResets); err != nil {
		pc.log.Warnf("request_stream_reset(%v) failed: %v", pc.pendingResets, err)
		return
	}
	pc.pendingResets = pc.pendingResets[:0]
}

// handleStreamReset implements §4.6: reconcile the channel table against a
// batch of stream ids the transport reports as reset.
func (pc *PeerConnection) handleStreamReset(n *Notification) {
	if n.ResetFlags.Denied || n.ResetFlags.Failed {
		pc.log.Warnf("stream reset denied/failed for %v", n.ResetStreamIDs)
	} else {
		for _, s := range n.ResetStreamIDs {
			if n.ResetFlags.Incoming {
				if c := pc.findChannelByIStream(s); c != nil {
					pc.unbindIStream(c)
					if c.oStream == 0 {
						c.reset()
					} else {
						pc.queueReset(c.oStream)
						c.state = StateClosing
					}
				}
			}
			if n.ResetFlags.Outgoing {
				if c := pc.findChannelByOStream(s); c != nil {
					pc.unbindOStream(c)
					if c.iStream == 0 {
						c.reset()
					}
					// Else: leave state as CLOSING, the peer's incoming reset
					// completes it later.
				}
			}
		}
	}

	pc.flushResets()
	pc.requestMoreOStreams()
}

// handleStreamChange implements §4.7: react to the transport reporting the
// outbound stream limit changed.
func (pc *PeerConnection) handleStreamChange(n *Notification) {
	if n.ChangeFlags.Denied || n.ChangeFlags.Failed {
		for i := range pc.channels {
			c := &pc.channels[i]
			if c.state == StateConnecting && c.oStream == 0 {
				c.reset()
			}
		}
		pc.flushResets()
		pc.requestMoreOStreams()
		return
	}

	for i := range pc.channels {
		c := &pc.channels[i]
		if c.state != StateConnecting || c.oStream != 0 {
			continue
		}

		s := pc.findFreeOStream()
		if s == 0 {
			break
		}

		if c.iStream != 0 {
			pc.grantResponder(c, s)
			continue
		}
		pc.grantInitiator(c, s)
	}

	pc.flushResets()
	pc.requestMoreOStreams()
}

// grantResponder emits the deferred OpenResponse for a responder channel
// that just received its outbound stream grant.
func (pc *PeerConnection) grantResponder(c *Channel, s uint16) {
	rsp := &wire.OpenResponse{ReverseStream: c.iStream}
	raw, err := rsp.Marshal()
	if err != nil {
		pc.log.Warnf("failed to marshal deferred open response for channel %d: %v", c.id, err)
		return
	}
	if err := pc.transport.Send(s, raw, wire.PPIDControl, SendFlags{}); err != nil {
		pc.log.Warnf("failed to send deferred open response for channel %d: %v", c.id, err)
		return
	}
	pc.bindOStream(c, s)
}

// grantInitiator emits the deferred OpenRequest for an initiator channel
// that just received its outbound stream grant.
func (pc *PeerConnection) grantInitiator(c *Channel, s uint16) {
	ct, _ := wire.ChannelTypeFromPolicy(c.policy)
	req := &wire.OpenRequest{
		ChannelType:          ct,
		ReliabilityParameter: uint16(c.value),
	}
	if c.unordered {
		req.Flags |= wire.FlagOutOfOrderAllowed
	}

	raw, err := req.Marshal()
	if err != nil {
		pc.log.Warnf("failed to marshal deferred open request for channel %d: %v", c.id, err)
		return
	}

	flags := SendFlags{Unordered: c.unordered, Policy: c.policy, Value: c.value}
	if err := pc.transport.Send(s, raw, wire.PPIDControl, flags); err != nil {
		pc.log.Warnf("failed to send deferred open request for channel %d: %v", c.id, err)
		c.reset()
		return
	}
	pc.bindOStream(c, s)
}
