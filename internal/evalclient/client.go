package evalclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/wire"
)

// RemoteError wraps a server-side evaluation failure (§6.2 "the server
// returns either a reduced QIR expression... or a server-side error").
type RemoteError struct{ Message string }

func (e *RemoteError) Error() string { return fmt.Sprintf("evalclient: remote error: %s", e.Message) }

// Client is a connection to a single remote evaluator (§6.2's sole
// operation, evaluate(Expression) -> Expression). It is agnostic to the
// concrete query dialect the server runs — it only ever speaks the §6.1
// wire schema, streamed with internal/wire's msgpack codec the same way
// the teacher's internal/driver.DiskCache streams msgpack.NewEncoder to a
// file rather than defining an ad-hoc byte layout.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	enc     *msgpack.Encoder
	dec     *msgpack.Decoder
	timeout time.Duration
}

// Dial opens a connection to a remote evaluator at addr ("host:port").
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("evalclient: dial %s: %w", addr, err)
	}
	return NewClient(conn, timeout), nil
}

// NewClient wraps an already-established connection, letting tests drive
// the protocol over a net.Pipe() instead of a real socket.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{conn: conn, enc: msgpack.NewEncoder(conn), dec: msgpack.NewDecoder(conn), timeout: timeout}
}

func (c *Client) Close() error { return c.conn.Close() }

// Evaluate sends e to the server and returns its reduced form. One frame is
// the request (the bare Expression); the response frame is a [ok bool,
// payload] pair where payload is either the result Expression or an error
// message string.
func (c *Client) Evaluate(ctx context.Context, e *qir.Expr) (*qir.Expr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
	} else if c.timeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
	} else {
		_ = c.conn.SetDeadline(time.Time{})
	}

	if err := wire.EncodeWith(c.enc, e); err != nil {
		return nil, fmt.Errorf("evalclient: send request: %w", err)
	}

	if _, err := c.dec.DecodeArrayLen(); err != nil {
		return nil, fmt.Errorf("evalclient: read response: %w", err)
	}
	ok, err := c.dec.DecodeBool()
	if err != nil {
		return nil, fmt.Errorf("evalclient: read response status: %w", err)
	}
	if !ok {
		msg, err := c.dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("evalclient: read error message: %w", err)
		}
		return nil, &RemoteError{Message: msg}
	}
	return wire.DecodeWith(c.dec)
}

// ServeOne reads one request frame from conn, evaluates it with eval (the
// server-side reduction function, e.g. EvaluateLocally bound to a Rows
// table), and writes back the response frame. It is the trivial reference
// server used by this package's tests — real deployments run their own
// server speaking this same protocol.
func ServeOne(conn net.Conn, eval func(*qir.Expr) (*qir.Expr, error)) error {
	dec := msgpack.NewDecoder(conn)
	req, err := wire.DecodeWith(dec)
	if err != nil {
		return fmt.Errorf("evalclient: read request: %w", err)
	}
	result, evalErr := eval(req)
	enc := msgpack.NewEncoder(conn)
	if evalErr != nil {
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeBool(false); err != nil {
			return err
		}
		return enc.EncodeString(evalErr.Error())
	}
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeBool(true); err != nil {
		return err
	}
	return wire.EncodeWith(enc, result)
}
