package commissioning

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// MaxMessageSize bounds a framed message.
const MaxMessageSize = 64 * 1024

// Serve accepts connections on ln and serves each one until ctx is done.
// It closes ln before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ServeConn(ctx, conn); err != nil {
				s.logger.Debug("commissioning connection closed", "remote", conn.RemoteAddr(), "error", err)
			}
		}()
	}
}

// ServeConn answers framed command messages on conn, one at a time, until the
// peer closes it or ctx is done.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		msg, err := readMessage(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrInvalidMessage) {
				_ = writeMessage(conn, newCommissioningError(err))
			}
			return err
		}

		if err := writeMessage(conn, s.Handle(ctx, msg)); err != nil {
			return err
		}
	}
}

// Client sends commissioning commands over a stream connection.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewClient creates a client on conn.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Call sends msg and waits for the response. A *CommissioningError response
// is returned as the error.
func (c *Client) Call(ctx context.Context, msg any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := writeMessage(c.conn, msg); err != nil {
		return nil, err
	}
	resp, err := readMessageWithContext(ctx, c.conn)
	if err != nil {
		return nil, err
	}
	if cerr, ok := resp.(*CommissioningError); ok {
		return nil, cerr
	}
	return resp, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Wire protocol helpers

// writeMessage writes a length-prefixed CBOR message to the connection.
func writeMessage(w io.Writer, msg any) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// readMessage reads a length-prefixed CBOR message from the connection.
func readMessage(r io.Reader) (any, error) {
	length := make([]byte, 4)
	if _, err := io.ReadFull(r, length); err != nil {
		return nil, err
	}

	msgLen := binary.BigEndian.Uint32(length)
	if msgLen > MaxMessageSize {
		return nil, fmt.Errorf("%w: message too large: %d bytes", ErrInvalidMessage, msgLen)
	}

	data := make([]byte, msgLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return DecodeMessage(data)
}

// readMessageWithContext reads a message with context cancellation support.
func readMessageWithContext(ctx context.Context, conn net.Conn) (any, error) {
	type result struct {
		msg any
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		msg, err := readMessage(conn)
		resultCh <- result{msg, err}
	}()

	select {
	case <-ctx.Done():
		// Unblock the reader; the connection is unusable after this.
		conn.Close()
		return nil, ctx.Err()
	case r := <-resultCh:
		return r.msg, r.err
	}
}
