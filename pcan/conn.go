package pcan

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/avast/retry-go/v4"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"github.com/pcan-tools/go-pcanflash/protocol"
)

// Session defaults. The response timeout covers one request/acknowledgment
// exchange; attempts is the transport-internal retry budget per exchange.
const (
	DefaultResponseTimeout = 2 * time.Second
	DefaultAttempts        = 3

	// discoveryQuiet ends the discovery collection once the bus stayed
	// silent for this long.
	discoveryQuiet = 300 * time.Millisecond

	rxBuffer = 256
)

// Conn is one flash-protocol session on a SocketCAN interface. It owns the
// socket for the run's duration and pairs requests with replies in strict
// lockstep; it is not safe for concurrent use.
type Conn struct {
	conn    net.Conn
	tx      *socketcan.Transmitter
	frames  chan can.Frame
	done    chan struct{}
	timeout time.Duration
	retries uint
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithResponseTimeout overrides the per-exchange response timeout.
func WithResponseTimeout(d time.Duration) ConnOption {
	return func(c *Conn) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAttempts overrides the transport-internal retry budget per exchange.
func WithAttempts(n uint) ConnOption {
	return func(c *Conn) {
		if n > 0 {
			c.retries = n
		}
	}
}

// Dial opens the named CAN interface for a flashing session. It refuses
// interfaces whose transmit queue is too short to absorb the block-write
// frame bursts.
func Dial(ctx context.Context, ifname string, opts ...ConnOption) (*Conn, error) {
	if err := checkTxQueueLen(ifname); err != nil {
		return nil, err
	}

	conn, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ifname, err)
	}

	c := &Conn{
		conn:    conn,
		tx:      socketcan.NewTransmitter(conn),
		frames:  make(chan can.Frame, rxBuffer),
		done:    make(chan struct{}),
		timeout: DefaultResponseTimeout,
		retries: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.receive(socketcan.NewReceiver(conn))
	return c, nil
}

// Close shuts the session down. Pending receives unblock with an error.
func (c *Conn) Close() error {
	close(c.done)
	return c.conn.Close()
}

// receive pumps frames from the socket into the session channel, dropping
// everything not addressed to the flash protocol identifier.
func (c *Conn) receive(rx *socketcan.Receiver) {
	for rx.Receive() {
		frame := rx.Frame()
		if frame.ID != protocol.CANID || frame.IsRemote {
			continue
		}
		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

// drain discards frames still buffered from a previous exchange so the
// next request is paired with its own reply.
func (c *Conn) drain() {
	for {
		select {
		case <-c.frames:
		default:
			return
		}
	}
}

// send transmits a single request frame.
func (c *Conn) send(ctx context.Context, frame can.Frame) error {
	if err := c.tx.TransmitFrame(ctx, frame); err != nil {
		return fmt.Errorf("transmit: %w", err)
	}
	return nil
}

// recv waits for the next protocol frame or the response timeout.
func (c *Conn) recv(ctx context.Context) (can.Frame, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case frame := <-c.frames:
		return frame, nil
	case <-timer.C:
		return can.Frame{}, fmt.Errorf("no response within %s", c.timeout)
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case <-c.done:
		return can.Frame{}, net.ErrClosed
	}
}

// roundTrip performs one blocking request/response exchange, retrying the
// whole exchange on timeout. Orchestration above never retries; this is
// the only retry loop in the stack.
func (c *Conn) roundTrip(ctx context.Context, req can.Frame) (can.Frame, error) {
	var resp can.Frame
	err := retry.Do(
		func() error {
			c.drain()
			if err := c.send(ctx, req); err != nil {
				return err
			}
			var err error
			resp, err = c.recv(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.LastErrorOnly(true),
	)
	return resp, err
}
