// Command rtcweb is a line-oriented REPL for exercising a data channel
// PeerConnection over a real SCTP association, translating the usrsctp
// rtcweb demo's commands (open/close/send/status/sleep/help) onto
// github.com/pion/sctp.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pion/logging"

	"github.com/duttski/usrsctp"
	"github.com/duttski/usrsctp/pkg/wire"
)

func main() {
	localPort := flag.Int("local-port", 9899, "local TCP port to listen on (server mode only)")
	remoteAddr := flag.String("remote-addr", "", "remote host to connect to; empty means act as server")
	remotePort := flag.Int("remote-port", 0, "remote TCP port to connect to")
	flag.Parse()

	loggerFactory := logging.NewDefaultLoggerFactory()
	log := loggerFactory.NewLogger("rtcweb")

	transport, err := dial(*localPort, *remoteAddr, *remotePort, loggerFactory)
	if err != nil {
		log.Errorf("failed to establish association: %v", err)
		os.Exit(1)
	}

	pc := datachannel.NewPeerConnection(transport, datachannel.Config{LoggerFactory: loggerFactory})
	pc.OnMessage(func(channelID uint16, payload []byte, ppid wire.PPID) {
		fmt.Printf("Message received of length %d on channel with id %d: %.*s\n", len(payload), channelID, len(payload), payload)
	})

	repl(pc)
}

func dial(localPort int, remoteAddr string, remotePort int, loggerFactory logging.LoggerFactory) (*datachannel.SCTPTransport, error) {
	if remoteAddr == "" {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", localPort))
		if err != nil {
			return nil, err
		}
		fmt.Printf("Listening on port %d.\n", localPort)
		conn, err := ln.Accept()
		if err != nil {
			return nil, err
		}
		return datachannel.AcceptSCTP(conn, loggerFactory)
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", remoteAddr, remotePort))
	if err != nil {
		return nil, err
	}
	fmt.Printf("Connected to %s:%d.\n", remoteAddr, remotePort)
	return datachannel.DialSCTP(conn, loggerFactory)
}

const helpText = `Commands:
open unordered pr_policy pr_value - opens a channel
close channel - closes the channel
send channel:string - sends string using channel
status - prints the status
sleep n - sleep for n seconds
help - this message
`

func repl(pc *datachannel.PeerConnection) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "?" || line == "help":
			fmt.Print(helpText)
		case line == "status":
			printStatus(pc)
		case strings.HasPrefix(line, "open "):
			handleOpen(pc, line)
		case strings.HasPrefix(line, "close "):
			handleClose(pc, line)
		case strings.HasPrefix(line, "send "):
			handleSend(pc, line)
		case strings.HasPrefix(line, "sleep "):
			handleSleep(line)
		default:
			fmt.Printf("Unknown command: %s\n", line)
		}
	}
}

func handleOpen(pc *datachannel.PeerConnection, line string) {
	fields := strings.Fields(strings.TrimPrefix(line, "open "))
	if len(fields) != 3 {
		fmt.Printf("Unknown command: %s\n", line)
		return
	}
	unordered, err1 := strconv.ParseUint(fields[0], 10, 8)
	policy, err2 := strconv.ParseUint(fields[1], 10, 8)
	value, err3 := strconv.ParseUint(fields[2], 10, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Printf("Unknown command: %s\n", line)
		return
	}

	id, err := pc.OpenChannel(unordered != 0, wire.Policy(policy), uint32(value))
	if err != nil {
		fmt.Printf("Creating channel failed: %v\n", err)
		return
	}
	fmt.Printf("Channel with id %d created.\n", id)
}

func handleClose(pc *datachannel.PeerConnection, line string) {
	id, err := strconv.ParseUint(strings.TrimPrefix(line, "close "), 10, 16)
	if err != nil {
		fmt.Printf("Unknown command: %s\n", line)
		return
	}
	if err := pc.CloseChannel(uint16(id)); err != nil {
		fmt.Printf("Closing channel failed: %v\n", err)
	}
}

func handleSend(pc *datachannel.PeerConnection, line string) {
	rest := strings.TrimPrefix(line, "send ")
	idPart, msg, ok := strings.Cut(rest, ":")
	if !ok {
		return
	}
	id, err := strconv.ParseUint(idPart, 10, 16)
	if err != nil {
		fmt.Printf("Unknown command: %s\n", line)
		return
	}
	if err := pc.SendUserMessage(uint16(id), []byte(msg), wire.PPIDDOMString); err != nil {
		fmt.Printf("Message sending failed: %v\n", err)
		return
	}
	fmt.Println("Message sent.")
}

func handleSleep(line string) {
	n, err := strconv.Atoi(strings.TrimPrefix(line, "sleep "))
	if err != nil {
		return
	}
	time.Sleep(time.Duration(n) * time.Second)
}

func printStatus(pc *datachannel.PeerConnection) {
	st := pc.Status()
	fmt.Printf("Number of streams (i/o) = (%d/%d)\n", st.InboundStreams, st.OutboundStreams)
	for _, c := range st.Channels {
		fmt.Printf("Channel with id = %d: state %s, stream id (in/out): (%d/%d), ", c.ID, c.State, c.IStream, c.OStream)
		if c.Unordered {
			fmt.Print("unordered, ")
		} else {
			fmt.Print("ordered, ")
		}
		switch c.Policy {
		case wire.PolicyReliable:
			fmt.Println("reliable.")
		case wire.PolicyPartialTimed:
			fmt.Printf("unreliable (timeout %dms).\n", c.Value)
		case wire.PolicyPartialRexmit:
			fmt.Printf("unreliable (max. %d rtx).\n", c.Value)
		default:
			fmt.Printf("unknown policy %d.\n", c.Policy)
		}
	}
}
