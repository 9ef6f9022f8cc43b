package datachannel

// findFreeOStream implements §4.3: query the transport's current outbound
// stream count, cap it at the table size, and scan ids 1..limit-1 (0 is
// reserved) for the first unbound one. Returns 0 if none is available.
func (pc *PeerConnection) findFreeOStream() uint16 {
	n := int(pc.transport.QueryOutboundStreamCount())
	limit := n
	if limit > pc.streamCap {
		limit = pc.streamCap
	}
	for s := 1; s < limit; s++ {
		if pc.oStreamChannel[s] == noChannel {
			return uint16(s)
		}
	}
	return 0
}

// requestMoreOStreams implements §4.3: count CONNECTING channels still
// waiting on an outbound stream, cap the deficit at the remaining table
// space, and ask the transport for that many more outbound streams.
func (pc *PeerConnection) requestMoreOStreams() {
	deficit := 0
	for i := range pc.channels {
		if pc.channels[i].state == StateConnecting && pc.channels[i].oStream == 0 {
			deficit++
		}
	}
	if deficit == 0 {
		return
	}

	current := int(pc.transport.QueryOutboundStreamCount())
	room := pc.streamCap - current
	if room < 0 {
		room = 0
	}
	if deficit > room {
		deficit = room
	}
	if deficit <= 0 {
		return
	}

	if err := pc.transport.RequestAddStreams(0, uint16(deficit)); err != nil {
		pc.log.Warnf("request_add_streams(%d) failed: %v", deficit, err)
	}
}
