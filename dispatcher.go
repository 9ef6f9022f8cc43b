package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// onTransportDelivery is the core's single entry point (§4.8), registered
// with the Transport at construction. It acquires the table lock, classifies
// the delivery as a notification or a PPID-tagged payload, and dispatches.
func (pc *PeerConnection) onTransportDelivery(d Delivery) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if d.IsNotification {
		pc.handleNotification(d.Notification)
		return
	}

	switch d.PPID {
	case wire.PPIDControl:
		msg, err := wire.Decode(d.Payload)
		if err != nil {
			pc.log.Debugf("dropping malformed control message on stream %d: %v", d.StreamID, err)
			return
		}
		switch m := msg.(type) {
		case *wire.OpenRequest:
			pc.handleOpenRequest(d.StreamID, m)
		case *wire.OpenResponse:
			pc.handleOpenResponse(d.StreamID, m)
		case *wire.Ack:
			pc.handleAck(d.StreamID)
		}
	case wire.PPIDDOMString, wire.PPIDBinary:
		pc.handleData(d.StreamID, d.Payload, d.PPID)
	default:
		pc.log.Debugf("dropping message with unknown ppid %d on stream %d", d.PPID, d.StreamID)
	}
}

// handleNotification dispatches a transport notification by kind. Only
// StreamReset, StreamChange, and AssociationChange drive channel-table
// transitions; the rest are accepted and logged, per §4.8.
func (pc *PeerConnection) handleNotification(n *Notification) {
	if n == nil {
		return
	}
	switch n.Kind {
	case NotifyStreamReset:
		pc.handleStreamReset(n)
	case NotifyStreamChange:
		pc.handleStreamChange(n)
	case NotifyAssociationChange:
		pc.handleAssociationChange(n)
	case NotifySendFailed:
		pc.log.Warnf("send failed: stream=%d ppid=%d error=%d", n.FailedStreamID, n.FailedPPID, n.FailedError)
	case NotifyRemoteError:
		pc.log.Warnf("remote error, cause=%x", n.ErrorCause)
	default:
		pc.log.Debugf("notification %s received, logged only", n.Kind)
	}
}

// handleAssociationChange records the association state and the negotiated
// inbound stream count, logs the stream counts and feature flags, and, on a
// comm-lost transition, force-closes every non-CLOSED
// channel (the §7 open-question resolution: channel records are not reaped
// automatically otherwise).
func (pc *PeerConnection) handleAssociationChange(n *Notification) {
	pc.associationState = n.AssociationState
	pc.inboundStreams = n.InboundStreams

	pc.log.Infof(
		"association change: state=%d in=%d out=%d pr=%v auth=%v asconf=%v multibuf=%v reconfig=%v",
		n.AssociationState, n.InboundStreams, n.OutboundStreams,
		n.SupportsPartialReliability, n.SupportsAuth, n.SupportsASCONF,
		n.SupportsMultibuf, n.SupportsReconfig,
	)

	if n.AssociationState != AssociationCommLost {
		return
	}

	for i := range pc.channels {
		c := &pc.channels[i]
		if c.state == StateClosed {
			continue
		}
		pc.unbindIStream(c)
		pc.unbindOStream(c)
		c.reset()
	}
	pc.pendingResets = pc.pendingResets[:0]
	pc.log.Infof("association lost, force-closed all channels")
}
