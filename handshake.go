package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// OpenChannel implements §4.4's local-initiator open_channel. It validates
// the pre-conditions before touching the table, allocates a channel record,
// and either emits an OpenRequest immediately or promotes the channel to
// CONNECTING with o_stream == 0 and asks the transport for more outbound
// streams.
func (pc *PeerConnection) OpenChannel(unordered bool, policy wire.Policy, value uint32) (uint16, error) {
	params := OpenParameters{Unordered: unordered, Policy: policy, Value: value}
	if err := params.Validate(); err != nil {
		return 0, &InvalidArgumentError{Err: err}
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	c := pc.findFreeChannel()
	if c == nil {
		return 0, &ResourceError{Err: ErrNoFreeChannel}
	}

	c.unordered = unordered
	c.policy = policy
	c.value = value
	c.state = StateConnecting

	s := pc.findFreeOStream()
	if s == 0 {
		pc.requestMoreOStreams()
		return c.id, nil
	}

	ct, _ := wire.ChannelTypeFromPolicy(policy)
	req := &wire.OpenRequest{
		ChannelType:          ct,
		ReliabilityParameter: uint16(value),
	}
	if unordered {
		req.Flags |= wire.FlagOutOfOrderAllowed
	}

	raw, err := req.Marshal()
	if err != nil {
		c.reset()
		return 0, &TransportError{Err: err}
	}

	// Per the documented open question in §4.4: treat a send failure here as
	// fatal for the channel rather than promoting it on the `||` short
	// circuit the source takes. Revert to CLOSED and release the id.
	sendFlags := SendFlags{Unordered: unordered, Policy: policy, Value: value}
	if err := pc.transport.Send(s, raw, wire.PPIDControl, sendFlags); err != nil {
		c.reset()
		return 0, &TransportError{Err: err}
	}

	pc.bindOStream(c, s)
	return c.id, nil
}

// SendUserMessage implements §6.2's send_user_message. Permitted on a
// CONNECTING channel (the message queues behind the open handshake on the
// same outbound stream) or an OPEN one.
func (pc *PeerConnection) SendUserMessage(channelID uint16, payload []byte, ppid wire.PPID) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	c, err := pc.channelByID(channelID)
	if err != nil {
		return err
	}

	if c.state != StateConnecting && c.state != StateOpen {
		return &StateError{Err: ErrChannelNotOpen}
	}

	flags := SendFlags{Unordered: c.unordered, Policy: c.policy, Value: c.value}
	if err := pc.transport.Send(c.oStream, payload, ppid, flags); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// CloseChannel implements §4.4's close_channel: no-op unless OPEN, otherwise
// queues the outbound stream for a batched reset, flushes it, and enters
// CLOSING.
func (pc *PeerConnection) CloseChannel(channelID uint16) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	c, err := pc.channelByID(channelID)
	if err != nil {
		return err
	}

	if c.state != StateOpen {
		return nil
	}

	pc.queueReset(c.oStream)
	pc.flushResets()
	c.state = StateClosing
	return nil
}

// handleOpenRequest implements §4.4's responder path for an inbound
// OpenRequest on stream i. Called with pc.mu held.
func (pc *PeerConnection) handleOpenRequest(i uint16, req *wire.OpenRequest) {
	if int(i) >= len(pc.iStreamChannel) {
		pc.log.Debugf("open request on out-of-range inbound stream %d, dropping", i)
		return
	}
	if pc.iStreamChannel[i] != noChannel {
		pc.log.Debugf("open request on already-bound inbound stream %d, dropping", i)
		return
	}

	c := pc.findFreeChannel()
	if c == nil {
		pc.log.Warnf("open request on stream %d dropped: no free channel", i)
		return
	}

	policy, ok := wire.PolicyFromChannelType(req.ChannelType)
	if !ok {
		pc.log.Debugf("open request on stream %d has unknown channel_type %d, dropping", i, req.ChannelType)
		return
	}

	c.policy = policy
	c.value = uint32(req.ReliabilityParameter)
	c.unordered = req.Unordered()
	c.state = StateConnecting
	pc.bindIStream(c, i)

	s := pc.findFreeOStream()
	if s == 0 {
		pc.requestMoreOStreams()
		return
	}

	rsp := &wire.OpenResponse{ReverseStream: i}
	raw, err := rsp.Marshal()
	if err != nil {
		pc.log.Warnf("failed to marshal open response for channel %d: %v", c.id, err)
		return
	}
	if err := pc.transport.Send(s, raw, wire.PPIDControl, SendFlags{}); err != nil {
		pc.log.Warnf("failed to send open response for channel %d: %v", c.id, err)
		return
	}
	pc.bindOStream(c, s)
}

// handleOpenResponse implements §4.4's initiator path for an inbound
// OpenResponse on stream i. Called with pc.mu held.
func (pc *PeerConnection) handleOpenResponse(i uint16, rsp *wire.OpenResponse) {
	o := rsp.ReverseStream

	c := pc.findChannelByOStream(o)
	if c == nil {
		pc.log.Debugf("open response references unbound outbound stream %d, dropping", o)
		return
	}
	if c.state != StateConnecting {
		pc.log.Debugf("open response for channel %d not CONNECTING, dropping", c.id)
		return
	}
	if int(i) >= len(pc.iStreamChannel) {
		pc.log.Debugf("open response on out-of-range inbound stream %d, dropping", i)
		return
	}
	if pc.iStreamChannel[i] != noChannel {
		pc.log.Debugf("open response collides on already-bound inbound stream %d, dropping", i)
		return
	}

	pc.bindIStream(c, i)
	c.state = StateOpen

	raw, err := (&wire.Ack{}).Marshal()
	if err != nil {
		pc.log.Warnf("failed to marshal ack for channel %d: %v", c.id, err)
		return
	}
	if err := pc.transport.Send(o, raw, wire.PPIDControl, SendFlags{}); err != nil {
		pc.log.Warnf("failed to send ack for channel %d: %v", c.id, err)
	}
}

// handleAck implements §4.4's ack receipt on inbound stream i.
func (pc *PeerConnection) handleAck(i uint16) {
	c := pc.findChannelByIStream(i)
	if c == nil {
		pc.log.Debugf("ack on unbound inbound stream %d, dropping", i)
		return
	}
	switch c.state {
	case StateOpen:
		// Already open; nothing to do.
	case StateConnecting:
		c.state = StateOpen
	default:
		pc.log.Debugf("ack for channel %d in unexpected state %s, dropping", c.id, c.state)
	}
}

// handleData implements §4.4's data-message receipt on inbound stream i,
// including implicit ack (L3).
func (pc *PeerConnection) handleData(i uint16, payload []byte, ppid wire.PPID) {
	c := pc.findChannelByIStream(i)
	if c == nil {
		pc.log.Debugf("data on unbound inbound stream %d, dropping", i)
		return
	}
	switch c.state {
	case StateConnecting:
		c.state = StateOpen
		fallthrough
	case StateOpen:
		pc.deliver(c, payload, ppid)
	default:
		pc.log.Debugf("data for channel %d in state %s, dropping", c.id, c.state)
	}
}
