package datachannel

import "github.com/duttski/usrsctp/pkg/wire"

// SendFlags carries the per-message delivery hints a Transport needs to pick
// the right SCTP send parameters (ordering, partial reliability).
type SendFlags struct {
	Unordered bool
	Policy    wire.Policy
	Value     uint32
}

// Transport is the SCTP association the core drives. It is the one
// out-of-scope collaborator named in §6.1: the core never depends on a
// concrete transport, only on this interface. SCTPTransport is the one
// production implementation shipped alongside it (backed by
// github.com/pion/sctp); tests drive the core against a fake.
type Transport interface {
	// Send transmits payload on streamID tagged with ppid, using flags to
	// pick ordering/partial-reliability parameters. Returns an error if the
	// message was not accepted for delivery.
	Send(streamID uint16, payload []byte, ppid wire.PPID, flags SendFlags) error

	// QueryOutboundStreamCount reports the association's current negotiated
	// outbound stream count.
	QueryOutboundStreamCount() uint16

	// RequestAddStreams asks the association to negotiate additional
	// streams. Completion is asynchronous and observed later as a
	// stream-change notification delivered through the registered callback.
	RequestAddStreams(inbound, outbound uint16) error

	// RequestStreamReset asks the association to reset the given outbound
	// stream ids in one batched call. Completion is asynchronous and
	// observed later as a stream-reset notification.
	RequestStreamReset(outgoingIDs []uint16) error

	// RegisterDeliveryCallback installs the core's single entry point for
	// both data deliveries and transport notifications. Called exactly once,
	// during PeerConnection construction.
	RegisterDeliveryCallback(fn func(Delivery))
}

// Delivery is what a Transport hands to the core on every inbound event.
// Exactly one of (PPID, StreamID, Payload) or Notification is meaningful,
// selected by IsNotification.
type Delivery struct {
	IsNotification bool

	PPID     wire.PPID
	StreamID uint16
	Payload  []byte

	Notification *Notification
}

// NotificationKind classifies a transport notification.
type NotificationKind int

// Notification kinds accepted by the dispatcher (§4.8). Only StreamReset,
// StreamChange, and AssociationChange (on comm-lost) drive channel-table
// transitions; the rest are logged.
const (
	NotifyAssociationChange NotificationKind = iota
	NotifyPeerAddressChange
	NotifyShutdown
	NotifySendFailed
	NotifyStreamReset
	NotifyStreamChange
	NotifyAdaptationIndication
	NotifyRemoteError
	NotifyOther
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyAssociationChange:
		return "association-change"
	case NotifyPeerAddressChange:
		return "peer-address-change"
	case NotifyShutdown:
		return "shutdown"
	case NotifySendFailed:
		return "send-failed"
	case NotifyStreamReset:
		return "stream-reset"
	case NotifyStreamChange:
		return "stream-change"
	case NotifyAdaptationIndication:
		return "adaptation-indication"
	case NotifyRemoteError:
		return "remote-error"
	default:
		return "other"
	}
}

// AssociationState is the coarse state carried by an association-change
// notification.
type AssociationState int

// Association states. AssociationCommLost drives the force-close behavior
// described in SPEC_FULL.md's open-question resolutions.
const (
	AssociationConnecting AssociationState = iota
	AssociationUp
	AssociationCommLost
	AssociationRestart
	AssociationShutdownComplete
)

// ResetFlags qualifies a stream-reset notification: which direction(s)
// were reset, and whether the request was denied or failed outright.
type ResetFlags struct {
	Incoming bool
	Outgoing bool
	Denied   bool
	Failed   bool
}

// ChangeFlags qualifies a stream-change notification.
type ChangeFlags struct {
	Denied bool
	Failed bool
}

// Notification carries the union of fields any transport notification kind
// may populate; only the fields relevant to Kind are meaningful.
type Notification struct {
	Kind NotificationKind

	AssociationState           AssociationState
	InboundStreams             uint16
	OutboundStreams            uint16
	SupportsPartialReliability bool
	SupportsAuth               bool
	SupportsASCONF             bool
	SupportsMultibuf           bool
	SupportsReconfig           bool

	FailedStreamID uint16
	FailedPPID     wire.PPID
	FailedError    uint32

	ResetStreamIDs []uint16
	ResetFlags     ResetFlags

	ChangeFlags ChangeFlags

	ErrorCause []byte
}
