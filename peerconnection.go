// Package datachannel implements the WebRTC data channel establishment
// protocol's control plane: channel table, stream allocator, open/close
// state machine, and event dispatcher, layered on top of an SCTP transport.
package datachannel

import (
	"sync"

	"github.com/pion/logging"

	"github.com/duttski/usrsctp/pkg/wire"
)

// PeerConnection is the channel table plus the state machine and dispatcher
// that drive it. One PeerConnection per SCTP association; it has no notion
// of a global process-wide singleton (§9's "global singleton" note).
type PeerConnection struct {
	mu sync.Mutex

	channels       []Channel
	iStreamChannel []int
	oStreamChannel []int

	pendingResets []uint16

	associationState AssociationState
	inboundStreams   uint16

	transport Transport
	log       logging.LeveledLogger

	channelCap int
	streamCap  int

	onMessage func(channelID uint16, payload []byte, ppid wire.PPID)
}

// NewPeerConnection builds a PeerConnection driving transport, and registers
// its delivery callback. Equivalent to the source's init_peer_connection,
// minus the global singleton: callers may construct as many as they have
// associations for.
func NewPeerConnection(transport Transport, cfg Config) *PeerConnection {
	cfg.fillDefaults()

	pc := &PeerConnection{
		channels:       make([]Channel, cfg.ChannelCap),
		iStreamChannel: make([]int, cfg.StreamCap),
		oStreamChannel: make([]int, cfg.StreamCap),
		transport:      transport,
		log:            cfg.LoggerFactory.NewLogger("datachannel"),
		channelCap:     cfg.ChannelCap,
		streamCap:      cfg.StreamCap,
	}

	for i := range pc.channels {
		pc.channels[i].id = uint16(i)
	}
	for i := range pc.iStreamChannel {
		pc.iStreamChannel[i] = noChannel
	}
	for i := range pc.oStreamChannel {
		pc.oStreamChannel[i] = noChannel
	}

	transport.RegisterDeliveryCallback(pc.onTransportDelivery)

	return pc
}

// OnMessage registers the handler invoked for every user data message
// delivered to an OPEN (or CONNECTING, via implicit ack) channel. Matching
// handle_data_message's direct printf in the source, the handler is called
// synchronously from the dispatcher so per-stream delivery order (§5) is
// preserved; a slow handler should hand off its own work asynchronously.
func (pc *PeerConnection) OnMessage(f func(channelID uint16, payload []byte, ppid wire.PPID)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.onMessage = f
}

func (pc *PeerConnection) deliver(c *Channel, payload []byte, ppid wire.PPID) {
	handler := pc.onMessage
	if handler == nil {
		return
	}
	handler(c.id, payload, ppid)
}
