package shairport

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"
)

// Listener is Thread A from spec §4.10: a UDP datagram reader that
// parses each packet, reassembles chunks, and dispatches completed
// messages into the Controller's state machine.
type Listener struct {
	addr       string
	controller *Controller
	collector  *ChunkCollector
	stop       atomic.Bool
	conn       *net.UDPConn
}

// NewListener builds a Listener bound to addr (e.g. "0.0.0.0:5555";
// spec §4.10 default port 5555).
func NewListener(addr string, c *Controller) *Listener {
	if addr == "" {
		addr = "0.0.0.0:5555"
	}
	return &Listener{addr: addr, controller: c, collector: NewChunkCollector()}
}

// Run opens the UDP socket and reads until ctx is cancelled or Stop is
// called. The socket read deadline is refreshed every second so the
// stop flag is polled at least that often (spec §4.10).
func (l *Listener) Run(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	l.conn = conn
	defer conn.Close()

	go func() {
		<-ctx.Done()
		l.Stop()
		conn.Close()
	}()

	buf := make([]byte, 65536)
	for !l.stop.Load() {
		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if l.stop.Load() {
				return nil
			}
			slog.Warn("shairport: udp read error", "err", err)
			continue
		}
		l.handleDatagram(buf[:n])
	}
	return nil
}

func (l *Listener) handleDatagram(datagram []byte) {
	msg := Parse(datagram)
	if msg.Kind == MsgChunkData {
		complete, ok := l.collector.Add(msg.DataType, msg.ChunkID, msg.TotalChunks, msg.Data)
		if !ok {
			return
		}
		msg.Data = complete
	}
	l.controller.handleMessage(msg)
}

// Stop requests the read loop exit; it may take up to one second to
// observe (spec §4.10's ≤1s polling requirement).
func (l *Listener) Stop() {
	l.stop.Store(true)
}
