package rtu

import (
	"io"
	"net"
	"time"
)

// TCPPort dials a transparent RS485-to-LAN converter. RTU frames go over
// the socket unchanged.
type TCPPort struct {
	Addr    string
	Timeout time.Duration
	Wait    time.Duration
}

func (p *TCPPort) Open(
	repeat bool,
) (io.ReadWriteCloser, time.Duration, error) {
	if p.Addr == "" {
		panic("empty TCPPort.Addr")
	}
	if p.Timeout <= 0 {
		p.Timeout = TIMEOUT
	}

	debugLog("Dialing %s", p.Addr)
	conn, err := net.DialTimeout("tcp", p.Addr, p.Timeout)
	if err != nil {
		return nil, p.Wait, OpenErr{p.Addr, err}
	}
	if err := conn.SetDeadline(time.Now().Add(p.Timeout)); err != nil {
		conn.Close()
		return nil, p.Wait, OpenErr{p.Addr, err}
	}
	if repeat {
		log("%s reachable again", p.Addr)
	}
	return conn, p.Wait, nil
}
