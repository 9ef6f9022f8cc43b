package datachannel

import (
	"sync"

	"github.com/duttski/usrsctp/pkg/wire"
)

type sentMessage struct {
	streamID uint16
	payload  []byte
	ppid     wire.PPID
	flags    SendFlags
}

// fakeTransport is an in-memory Transport double: it records every send and
// reset/add-streams call instead of touching a real association, and lets
// tests inject deliveries by calling deliverFn directly.
type fakeTransport struct {
	mu sync.Mutex

	outboundStreamCount uint16
	sent                []sentMessage
	addStreamsCalls     []uint16
	resetCalls          [][]uint16
	deliverFn           func(Delivery)

	sendErr  error
	addErr   error
	resetErr error
}

func newFakeTransport(outboundStreamCount uint16) *fakeTransport {
	return &fakeTransport{outboundStreamCount: outboundStreamCount}
}

func (f *fakeTransport) Send(streamID uint16, payload []byte, ppid wire.PPID, flags SendFlags) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{streamID, append([]byte(nil), payload...), ppid, flags})
	return nil
}

func (f *fakeTransport) QueryOutboundStreamCount() uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outboundStreamCount
}

func (f *fakeTransport) RequestAddStreams(_, outbound uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.addStreamsCalls = append(f.addStreamsCalls, outbound)
	return nil
}

func (f *fakeTransport) RequestStreamReset(outgoingIDs []uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetCalls = append(f.resetCalls, append([]uint16(nil), outgoingIDs...))
	return nil
}

func (f *fakeTransport) RegisterDeliveryCallback(fn func(Delivery)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliverFn = fn
}

func (f *fakeTransport) grantStreams(n uint16) {
	f.mu.Lock()
	f.outboundStreamCount = n
	f.mu.Unlock()
}

func (f *fakeTransport) lastSent() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
