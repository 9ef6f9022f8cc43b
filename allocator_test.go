package datachannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindFreeOStreamSkipsReservedZero(t *testing.T) {
	pc, tr := newTestPC(t, 3)
	_ = tr

	s := pc.findFreeOStream()
	assert.Equal(t, uint16(1), s)

	pc.oStreamChannel[1] = 0
	s = pc.findFreeOStream()
	assert.Equal(t, uint16(2), s)

	pc.oStreamChannel[2] = 1
	assert.Equal(t, uint16(0), pc.findFreeOStream(), "exhausted within the negotiated count")
}

func TestFindFreeOStreamBoundedByNegotiatedCount(t *testing.T) {
	pc, tr := newTestPC(t, 8)
	tr.outboundStreamCount = 2 // only id 1 usable even though the table is larger

	assert.Equal(t, uint16(1), pc.findFreeOStream())
	pc.oStreamChannel[1] = 0
	assert.Equal(t, uint16(0), pc.findFreeOStream())
}

func TestRequestMoreOStreamsCountsDeficit(t *testing.T) {
	pc, tr := newTestPC(t, 2)

	pc.channels[0].state = StateConnecting
	pc.channels[0].oStream = 0
	pc.channels[1].state = StateConnecting
	pc.channels[1].oStream = 0

	pc.requestMoreOStreams()

	assert.Len(t, tr.addStreamsCalls, 1)
	assert.Equal(t, uint16(2), tr.addStreamsCalls[0])
}

func TestRequestMoreOStreamsNoopWhenNoDeficit(t *testing.T) {
	pc, tr := newTestPC(t, 4)
	pc.requestMoreOStreams()
	assert.Empty(t, tr.addStreamsCalls)
}
