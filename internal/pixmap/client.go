// Package pixmap is the client side of the sapwood protocol. A Client owns
// the connection to the server; Open returns a TileSet whose 3×3 drawables
// are bound locally through a Display and released with TileSet.Release.
package pixmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/ItsNotGoodName/x-sapwood/internal/proto"
	"github.com/google/uuid"
)

// Server is the name of the program that must be running for Open to work.
const Server = "sapwood-server"

// Spec names one border image. Equal specs produce identical OPEN requests so
// the server can share the decoded result.
type Spec struct {
	File   string
	Border Border
	// Depth is a color depth hint, 0 for the server default.
	Depth int
}

type Border struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

func (s Spec) request() proto.OpenRequest {
	return proto.OpenRequest{
		Border: proto.Border{
			int32(s.Border.Left),
			int32(s.Border.Right),
			int32(s.Border.Top),
			int32(s.Border.Bottom),
		},
		Depth: int32(s.Depth),
		File:  s.File,
	}
}

// Client exchanges requests with the server over a single stream connection.
// Exchanges are serialised internally, so one Client can serve every render
// call site of a process.
//
// The connection is dialed on first use. After a failed write or read the
// connection is considered broken and every later call fails; the Client
// does not reconnect.
type Client struct {
	path    string
	display Display
	log     *slog.Logger
	// dialContext opens the stream; tests swap it for a fake transport.
	dialContext func(ctx context.Context, network, address string) (net.Conn, error)

	mu     sync.Mutex
	conn   net.Conn
	broken error
	closed bool
	live   map[uint32]int
}

func NewClient(path string, display Display) *Client {
	return &Client{
		path:    path,
		display: display,
		log:     slog.With("package", "pixmap", "session", uuid.NewString()),
		live:    make(map[uint32]int),

		dialContext: (&net.Dialer{}).DialContext,
	}
}

func (c *Client) Path() string {
	return c.path
}

// Open asks the server for the tile set described by spec and binds the
// returned handles. Cells whose handles fail to bind are left empty; the
// failures are available from TileSet.Errors.
func (c *Client) Open(ctx context.Context, spec Spec) (*TileSet, error) {
	op := "open " + filepath.Base(spec.File)

	req, err := spec.request().MarshalBinary()
	if err != nil {
		switch {
		case errors.Is(err, proto.ErrPathTooLong):
			return nil, newError(KindPathTooLong, op, err)
		default:
			return nil, newError(KindInvalidPath, op, err)
		}
	}

	buf := make([]byte, proto.OpenResponseSize)

	c.mu.Lock()
	err = c.exchange(ctx, op, req, buf)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	var rep proto.OpenResponse
	if err := rep.UnmarshalBinary(buf); err != nil {
		c.mu.Unlock()
		return nil, newError(KindProtocolShortRead, op, err)
	}
	c.live[rep.ID]++
	c.mu.Unlock()

	c.log.Debug("Opened tile set", "file", spec.File, "id", rep.ID, "width", rep.Width, "height", rep.Height)

	return newTileSet(c, spec, rep), nil
}

// release sends CLOSE for id. The caller has no use for id afterwards, so
// failures are only logged.
func (c *Client) release(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live[id] == 0 {
		c.log.Warn("Refusing to close unknown resource", "id", fmt.Sprintf("0x%x", id))
		return
	}
	c.live[id]--
	if c.live[id] == 0 {
		delete(c.live, id)
	}

	req, _ := proto.CloseRequest{ID: id}.MarshalBinary()
	if err := c.exchange(context.Background(), fmt.Sprintf("close(0x%x)", id), req, nil); err != nil {
		c.log.Warn("Failed to close resource", "id", fmt.Sprintf("0x%x", id), "error", err)
	}
}

// Close closes the connection. Tile sets still alive cannot be released
// afterwards; the server drops them when it sees the connection go away.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	conn, err := c.dialContext(ctx, "unix", c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sapwood server using %q: %w (%s must be started before applications)", c.path, err, Server)
	}
	c.log.Debug("Connected", "path", c.path)
	return conn, nil
}

// exchange writes req and, when rep is non-nil, reads exactly len(rep) bytes
// back. c.mu must be held.
func (c *Client) exchange(ctx context.Context, op string, req, rep []byte) error {
	if c.closed {
		return newError(KindClosed, op, nil)
	}
	if c.broken != nil {
		return newError(KindTransport, op, fmt.Errorf("connection unusable after earlier error: %w", c.broken))
	}
	if c.conn == nil {
		conn, err := c.dial(ctx)
		if err != nil {
			return newError(KindTransport, op, err)
		}
		c.conn = conn
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}

	// Write only returns short with an error; part of a record on the wire
	// is a protocol failure, nothing written is a transport one.
	n, err := c.conn.Write(req)
	if err != nil {
		c.broken = err
		if n > 0 && n < len(req) {
			return newError(KindProtocolShortWrite, op, fmt.Errorf("wrote %d of %d bytes: %w", n, len(req), err))
		}
		return newError(KindTransport, op, fmt.Errorf("write: %w", err))
	}

	if rep == nil {
		return nil
	}

	n, err = io.ReadFull(c.conn, rep)
	if err != nil {
		c.broken = err
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return newError(KindProtocolShortRead, op, fmt.Errorf("read %d, expected %d bytes", n, len(rep)))
		}
		return newError(KindTransport, op, fmt.Errorf("read: %w", err))
	}

	return nil
}
