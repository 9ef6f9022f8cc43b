package datachannel

import (
	"testing"

	"github.com/duttski/usrsctp/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: single reliable ordered channel, happy path.
func TestOpenChannelHappyPath(t *testing.T) {
	pc, tr := newTestPC(t, 4)
	pcB, trB := newTestPC(t, 4)

	id, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.NoError(t, err)

	c := &pc.channels[id]
	assert.Equal(t, StateConnecting, c.state)
	assert.Equal(t, uint16(1), c.oStream)

	sent := tr.lastSent()
	assert.Equal(t, uint16(1), sent.streamID)
	assert.Equal(t, wire.PPIDControl, sent.ppid)

	req, err := wire.Decode(sent.payload)
	require.NoError(t, err)
	openReq, ok := req.(*wire.OpenRequest)
	require.True(t, ok)
	assert.Equal(t, wire.ChannelTypeReliable, openReq.ChannelType)

	// B receives the request on its inbound stream 1.
	trB.deliverFn(Delivery{StreamID: 1, PPID: wire.PPIDControl, Payload: sent.payload})

	respSent := trB.lastSent()
	resp, err := wire.Decode(respSent.payload)
	require.NoError(t, err)
	openResp, ok := resp.(*wire.OpenResponse)
	require.True(t, ok)
	assert.Equal(t, uint16(1), openResp.ReverseStream)

	// A receives B's response on its inbound stream 1.
	tr.deliverFn(Delivery{StreamID: 1, PPID: wire.PPIDControl, Payload: respSent.payload})
	assert.Equal(t, StateOpen, c.state)

	ackSent := tr.lastSent()
	ack, err := wire.Decode(ackSent.payload)
	require.NoError(t, err)
	_, ok = ack.(*wire.Ack)
	require.True(t, ok)

	// B receives the ack on its inbound stream 1.
	trB.deliverFn(Delivery{StreamID: 1, PPID: wire.PPIDControl, Payload: ackSent.payload})

	// Both ends converged on matching, crossed stream ids (L1).
	assert.Equal(t, uint16(1), c.iStream)
	assert.Equal(t, uint16(1), c.oStream)
	cB := &pcB.channels[0]
	assert.Equal(t, StateOpen, cB.state)
	assert.Equal(t, uint16(1), cB.iStream)
	assert.Equal(t, uint16(1), cB.oStream)
}

// Scenario 3: stream exhaustion then grant.
func TestOpenChannelStreamExhaustion(t *testing.T) {
	pc, tr := newTestPC(t, 2) // only stream id 1 usable

	id1, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), pc.channels[id1].oStream)

	id2, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.NoError(t, err)
	assert.Equal(t, StateConnecting, pc.channels[id2].state)
	assert.Equal(t, uint16(0), pc.channels[id2].oStream)

	id3, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), pc.channels[id3].oStream)

	require.Len(t, tr.addStreamsCalls, 2, "each starved open_channel call requests more streams")

	tr.grantStreams(4)
	pc.onTransportDelivery(Delivery{
		IsNotification: true,
		Notification: &Notification{
			Kind: NotifyStreamChange,
		},
	})

	assert.Equal(t, uint16(2), pc.channels[id2].oStream)
	assert.Equal(t, uint16(3), pc.channels[id3].oStream)
}

// Scenario 5: malformed OpenResponse (3 bytes, msg_type=1) is rejected
// without any state change.
func TestHandleMalformedOpenResponse(t *testing.T) {
	pc, tr := newTestPC(t, 4)

	id, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.NoError(t, err)
	c := &pc.channels[id]

	tr.deliverFn(Delivery{StreamID: 1, PPID: wire.PPIDControl, Payload: []byte{0x01, 0x00, 0x00}})

	assert.Equal(t, StateConnecting, c.state)
	assert.Equal(t, 1, tr.sentCount(), "no message emitted in response to the malformed frame")
}

// Scenario 6 / Law L3: implicit ack via first data.
func TestImplicitAckOnData(t *testing.T) {
	pc, _ := newTestPC(t, 4)

	id, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.NoError(t, err)
	c := &pc.channels[id]

	// Responder side binds inbound stream 7 to this outbound-initiated
	// channel by simulating the handler directly (handshake not replayed).
	pc.bindIStream(c, 7)

	received := make(chan []byte, 1)
	pc.OnMessage(func(_ uint16, payload []byte, _ wire.PPID) {
		received <- payload
	})

	pc.onTransportDelivery(Delivery{StreamID: 7, PPID: wire.PPIDDOMString, Payload: []byte("hello")})

	assert.Equal(t, StateOpen, c.state)
	assert.Equal(t, "hello", string(<-received))
}

func TestOpenChannelInvalidArgument(t *testing.T) {
	pc, _ := newTestPC(t, 4)

	_, err := pc.OpenChannel(false, wire.PolicyReliable, 5)
	require.Error(t, err)
	var argErr *InvalidArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestOpenChannelNoFreeChannel(t *testing.T) {
	pc, _ := newTestPC(t, 100)

	for i := 0; i < pc.channelCap; i++ {
		_, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
		require.NoError(t, err)
	}

	_, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.Error(t, err)
	var resErr *ResourceError
	assert.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, ErrNoFreeChannel)
}

func TestOpenChannelSendFailureRevertsToClosed(t *testing.T) {
	pc, tr := newTestPC(t, 4)
	tr.sendErr = assertErr{"boom"}

	id, err := pc.OpenChannel(false, wire.PolicyReliable, 0)
	require.Error(t, err)
	assert.Equal(t, StateClosed, pc.channels[id].state)
	assert.Equal(t, uint16(0), pc.channels[id].oStream)
}

func TestSendUserMessageRequiresOpenOrConnecting(t *testing.T) {
	pc, _ := newTestPC(t, 4)
	err := pc.SendUserMessage(0, []byte("x"), wire.PPIDBinary)
	require.Error(t, err)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
