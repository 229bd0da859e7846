// Package udp listens for the station's broadcast datagrams.
package udp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Tempest stations broadcast datagrams well under this size.
const maxDatagramSize = 1024

// Receiver reads datagrams from the station broadcast port. It implements
// pipeline.PacketSource.
type Receiver struct {
	conn      *net.UDPConn
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewReceiver binds the broadcast address, e.g. "0.0.0.0:50222".
func NewReceiver(addr string, logger *slog.Logger) (*Receiver, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve udp address %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen udp %q: %w", addr, err)
	}
	logger.Info("udp receiver listening", "addr", addr)
	return &Receiver{conn: conn, logger: logger}, nil
}

// Receive blocks until one datagram arrives and returns its payload. Context
// cancellation closes the socket, which unblocks the pending read.
func (r *Receiver) Receive(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		r.Close() //nolint:errcheck // already shutting down
	})
	defer stop()

	buf := make([]byte, maxDatagramSize)
	n, _, err := r.conn.ReadFromUDP(buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("udp receive: %w", err)
	}
	return buf[:n], nil
}

// Close shuts the socket down. Safe to call more than once.
func (r *Receiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.conn.Close()
	})
	return err
}
