package datachannel

// noChannel marks a stream-index slot as unbound.
const noChannel = -1

// findChannelByIStream returns the channel bound to inbound stream s, or nil.
func (pc *PeerConnection) findChannelByIStream(s uint16) *Channel {
	if int(s) >= len(pc.iStreamChannel) {
		return nil
	}
	idx := pc.iStreamChannel[s]
	if idx == noChannel {
		return nil
	}
	return &pc.channels[idx]
}

// findChannelByOStream returns the channel bound to outbound stream s, or nil.
func (pc *PeerConnection) findChannelByOStream(s uint16) *Channel {
	if int(s) >= len(pc.oStreamChannel) {
		return nil
	}
	idx := pc.oStreamChannel[s]
	if idx == noChannel {
		return nil
	}
	return &pc.channels[idx]
}

// findFreeChannel scans for the first CLOSED slot.
func (pc *PeerConnection) findFreeChannel() *Channel {
	for i := range pc.channels {
		if pc.channels[i].state == StateClosed {
			return &pc.channels[i]
		}
	}
	return nil
}

// channelByID bounds-checks id and returns its record.
func (pc *PeerConnection) channelByID(id uint16) (*Channel, error) {
	if int(id) >= len(pc.channels) {
		return nil, &InvalidArgumentError{Err: ErrBadChannelID}
	}
	return &pc.channels[id], nil
}

// bindIStream binds inbound stream s to c, maintaining invariant I2.
func (pc *PeerConnection) bindIStream(c *Channel, s uint16) {
	pc.iStreamChannel[s] = int(c.id)
	c.iStream = s
}

// unbindIStream releases c's inbound stream binding, if any.
func (pc *PeerConnection) unbindIStream(c *Channel) {
	if c.iStream != 0 {
		pc.iStreamChannel[c.iStream] = noChannel
	}
	c.iStream = 0
}

// bindOStream binds outbound stream s to c, maintaining invariant I3.
func (pc *PeerConnection) bindOStream(c *Channel, s uint16) {
	pc.oStreamChannel[s] = int(c.id)
	c.oStream = s
}

// unbindOStream releases c's outbound stream binding, if any.
func (pc *PeerConnection) unbindOStream(c *Channel) {
	if c.oStream != 0 {
		pc.oStreamChannel[c.oStream] = noChannel
	}
	c.oStream = 0
}
