// Package wire implements the three-message data channel establishment
// protocol carried over SCTP control messages (PPID 50), plus the PPIDs used
// to tag user data (PPID 51/52).
//
// Layouts follow the WebRTC data channel establishment protocol as
// implemented by the usrsctp rtcweb demo: OpenRequest/OpenResponse/Ack.
package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// PPID identifies the payload carried by an SCTP user message.
type PPID uint32

// Payload protocol identifiers used on the wire.
const (
	PPIDControl   PPID = 50
	PPIDDOMString PPID = 51
	PPIDBinary    PPID = 52
)

// MessageType is the first byte of a PPIDControl message.
type MessageType uint8

// Control message types.
const (
	TypeOpenRequest  MessageType = 0
	TypeOpenResponse MessageType = 1
	TypeAck          MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case TypeOpenRequest:
		return "OpenRequest"
	case TypeOpenResponse:
		return "OpenResponse"
	case TypeAck:
		return "Ack"
	default:
		return "Unknown"
	}
}

// ChannelType is the wire encoding of a channel's reliability/ordering used
// inside an OpenRequest. It is distinct from the internal Policy:
// several wire values collapse onto the same internal policy.
type ChannelType uint8

// Wire channel types, per the data channel establishment protocol.
const (
	ChannelTypeReliable       ChannelType = 0
	ChannelTypeReliableStream ChannelType = 1
	ChannelTypeUnreliable     ChannelType = 2
	ChannelTypePartialRexmit  ChannelType = 3
	ChannelTypePartialTimed   ChannelType = 4
)

// FlagOutOfOrderAllowed is bit 0 of an OpenRequest's flags field.
const FlagOutOfOrderAllowed uint16 = 0x0001

const (
	openRequestFixedLen  = 8 // msg_type, channel_type, flags, reliability_params, priority
	openResponseFixedLen = 6
	ackFixedLen          = 1
)

// Message is a parsed control message.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(raw []byte) error
}

// Decode parses the first byte of raw to determine the control message
// variant and unmarshals into it. It returns ErrTruncatedMessage if raw is
// shorter than the fixed prefix for the detected tag, and
// ErrUnknownMessageType for any tag outside {0,1,2}.
func Decode(raw []byte) (Message, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(ErrTruncatedMessage, "empty control message")
	}

	var msg Message
	switch MessageType(raw[0]) {
	case TypeOpenRequest:
		msg = &OpenRequest{}
	case TypeOpenResponse:
		msg = &OpenResponse{}
	case TypeAck:
		msg = &Ack{}
	default:
		return nil, errors.Wrapf(ErrUnknownMessageType, "tag %d", raw[0])
	}

	if err := msg.Unmarshal(raw); err != nil {
		return nil, err
	}
	return msg, nil
}

// OpenRequest is the initiator's channel-open message.
type OpenRequest struct {
	ChannelType          ChannelType
	Flags                uint16
	ReliabilityParameter uint16
	Priority             int16
	Label                []byte
}

// Unordered reports whether FlagOutOfOrderAllowed is set.
func (r *OpenRequest) Unordered() bool {
	return r.Flags&FlagOutOfOrderAllowed != 0
}

// Marshal encodes the OpenRequest to its wire form.
func (r *OpenRequest) Marshal() ([]byte, error) {
	raw := make([]byte, openRequestFixedLen+len(r.Label))
	raw[0] = uint8(TypeOpenRequest)
	raw[1] = uint8(r.ChannelType)
	binary.BigEndian.PutUint16(raw[2:4], r.Flags)
	binary.BigEndian.PutUint16(raw[4:6], r.ReliabilityParameter)
	binary.BigEndian.PutUint16(raw[6:8], uint16(r.Priority))
	copy(raw[openRequestFixedLen:], r.Label)
	return raw, nil
}

// Unmarshal decodes an OpenRequest from its wire form.
func (r *OpenRequest) Unmarshal(raw []byte) error {
	if len(raw) < openRequestFixedLen {
		return errors.Wrapf(ErrTruncatedMessage, "OpenRequest needs %d bytes, got %d", openRequestFixedLen, len(raw))
	}
	r.ChannelType = ChannelType(raw[1])
	r.Flags = binary.BigEndian.Uint16(raw[2:4])
	r.ReliabilityParameter = binary.BigEndian.Uint16(raw[4:6])
	r.Priority = int16(binary.BigEndian.Uint16(raw[6:8]))
	if len(raw) > openRequestFixedLen {
		r.Label = append([]byte(nil), raw[openRequestFixedLen:]...)
	}
	return nil
}

// OpenResponse is the responder's reply. ReverseStream names the stream the
// OpenRequest arrived on, which is the initiator's outbound stream, so the
// initiator can find its channel by the outbound stream it originally used.
type OpenResponse struct {
	Error         uint8
	Flags         uint16
	ReverseStream uint16
}

// Marshal encodes the OpenResponse to its wire form.
func (r *OpenResponse) Marshal() ([]byte, error) {
	raw := make([]byte, openResponseFixedLen)
	raw[0] = uint8(TypeOpenResponse)
	raw[1] = r.Error
	binary.BigEndian.PutUint16(raw[2:4], r.Flags)
	binary.BigEndian.PutUint16(raw[4:6], r.ReverseStream)
	return raw, nil
}

// Unmarshal decodes an OpenResponse from its wire form.
func (r *OpenResponse) Unmarshal(raw []byte) error {
	if len(raw) < openResponseFixedLen {
		return errors.Wrapf(ErrTruncatedMessage, "OpenResponse needs %d bytes, got %d", openResponseFixedLen, len(raw))
	}
	r.Error = raw[1]
	r.Flags = binary.BigEndian.Uint16(raw[2:4])
	r.ReverseStream = binary.BigEndian.Uint16(raw[4:6])
	return nil
}

// Ack closes out the open handshake.
type Ack struct{}

// Marshal encodes the Ack to its wire form.
func (a *Ack) Marshal() ([]byte, error) {
	return []byte{uint8(TypeAck)}, nil
}

// Unmarshal decodes an Ack from its wire form.
func (a *Ack) Unmarshal(raw []byte) error {
	if len(raw) < ackFixedLen {
		return errors.Wrapf(ErrTruncatedMessage, "Ack needs %d bytes, got %d", ackFixedLen, len(raw))
	}
	return nil
}
