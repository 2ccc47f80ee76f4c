// Package proto defines the records exchanged with the sapwood server.
//
// Every record starts with a fixed header followed by a fixed body. Integers
// use the host byte order because client and server always run on the same
// machine. Nothing in this package performs I/O on its own except the
// decoding helpers used by peers that read from a stream.
package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// ByteOrder is the host byte order used for every integer on the wire.
var ByteOrder binary.ByteOrder = binary.NativeEndian

// PathMax is the largest filename, including the terminating NUL, that fits
// in an OPEN request.
const PathMax = unix.PathMax

type Op uint8

const (
	OpOpen  Op = 1
	OpClose Op = 2
)

func (o Op) String() string {
	switch o {
	case OpOpen:
		return "OPEN"
	case OpClose:
		return "CLOSE"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

const (
	// HeaderSize is op(1) + padding(3) + length(4), matching the C struct.
	HeaderSize = 8
	// OpenRequestSize is the size of an OPEN request without its filename.
	OpenRequestSize = HeaderSize + 5*4
	// OpenResponseSize is the size of every OPEN reply.
	OpenResponseSize = 4 + 4 + 4 + 9*4 + 9*4
	// CloseRequestSize is the size of every CLOSE request.
	CloseRequestSize = HeaderSize + 4
)

var (
	ErrPathTooLong = errors.New("filename too long")
	ErrInvalidPath = errors.New("invalid filename")
	ErrShortRead   = errors.New("short read")
	ErrUnknownOp   = errors.New("unknown operation")
)

// XID is a raw server-side drawable handle. Zero means absent.
type XID uint32

func (x XID) Valid() bool {
	return x != 0
}

func (x XID) String() string {
	return fmt.Sprintf("0x%x", uint32(x))
}

type Header struct {
	Op     Op
	Length uint32
}

func (h Header) put(b []byte) {
	b[0] = byte(h.Op)
	b[1], b[2], b[3] = 0, 0, 0
	ByteOrder.PutUint32(b[4:8], h.Length)
}

func parseHeader(b []byte) Header {
	return Header{
		Op:     Op(b[0]),
		Length: ByteOrder.Uint32(b[4:8]),
	}
}

// Border holds the insets in wire order: left, right, top, bottom.
type Border [4]int32

type OpenRequest struct {
	Border Border
	Depth  int32
	File   string
}

// Len returns the value of the header length field for r.
func (r OpenRequest) Len() int {
	return OpenRequestSize + len(r.File) + 1
}

func (r OpenRequest) MarshalBinary() ([]byte, error) {
	if r.File == "" || bytes.IndexByte([]byte(r.File), 0) >= 0 {
		return nil, fmt.Errorf("%q: %w", r.File, ErrInvalidPath)
	}
	if len(r.File)+1 > PathMax {
		return nil, fmt.Errorf("%s: %w", r.File, ErrPathTooLong)
	}

	b := make([]byte, r.Len())
	Header{Op: OpOpen, Length: uint32(len(b))}.put(b)
	off := HeaderSize
	for _, v := range r.Border {
		ByteOrder.PutUint32(b[off:], uint32(v))
		off += 4
	}
	ByteOrder.PutUint32(b[off:], uint32(r.Depth))
	off += 4
	copy(b[off:], r.File)
	// b[len(b)-1] is already NUL.
	return b, nil
}

func (r *OpenRequest) unmarshalBody(body []byte) error {
	if len(body) < OpenRequestSize-HeaderSize {
		return fmt.Errorf("open request body of %d bytes: %w", len(body), ErrShortRead)
	}
	off := 0
	for i := range r.Border {
		r.Border[i] = int32(ByteOrder.Uint32(body[off:]))
		off += 4
	}
	r.Depth = int32(ByteOrder.Uint32(body[off:]))
	off += 4

	name := body[off:]
	if len(name) > PathMax {
		name = name[:PathMax]
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	r.File = string(name)
	return nil
}

type OpenResponse struct {
	ID      uint32
	Width   int32
	Height  int32
	Pixmap  [3][3]XID
	Pixmask [3][3]XID
}

func (r OpenResponse) MarshalBinary() ([]byte, error) {
	b := make([]byte, OpenResponseSize)
	ByteOrder.PutUint32(b[0:], r.ID)
	ByteOrder.PutUint32(b[4:], uint32(r.Width))
	ByteOrder.PutUint32(b[8:], uint32(r.Height))
	off := 12
	for _, grid := range [2]*[3][3]XID{&r.Pixmap, &r.Pixmask} {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				ByteOrder.PutUint32(b[off:], uint32(grid[i][j]))
				off += 4
			}
		}
	}
	return b, nil
}

// UnmarshalBinary decodes a reply. Anything shorter than OpenResponseSize is
// rejected and r is left untouched.
func (r *OpenResponse) UnmarshalBinary(b []byte) error {
	if len(b) < OpenResponseSize {
		return fmt.Errorf("read %d, expected %d bytes: %w", len(b), OpenResponseSize, ErrShortRead)
	}
	var rep OpenResponse
	rep.ID = ByteOrder.Uint32(b[0:])
	rep.Width = int32(ByteOrder.Uint32(b[4:]))
	rep.Height = int32(ByteOrder.Uint32(b[8:]))
	off := 12
	for _, grid := range [2]*[3][3]XID{&rep.Pixmap, &rep.Pixmask} {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				grid[i][j] = XID(ByteOrder.Uint32(b[off:]))
				off += 4
			}
		}
	}
	*r = rep
	return nil
}

type CloseRequest struct {
	ID uint32
}

func (r CloseRequest) MarshalBinary() ([]byte, error) {
	b := make([]byte, CloseRequestSize)
	Header{Op: OpClose, Length: CloseRequestSize}.put(b)
	ByteOrder.PutUint32(b[HeaderSize:], r.ID)
	return b, nil
}

// Request is either an *OpenRequest or a *CloseRequest.
type Request interface {
	MarshalBinary() ([]byte, error)
}

// ReadRequest reads one request record from r. It is used by peers serving
// the protocol.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	h := parseHeader(hdr[:])
	if h.Length < HeaderSize {
		return nil, fmt.Errorf("%s: length %d: %w", h.Op, h.Length, ErrShortRead)
	}

	switch h.Op {
	case OpOpen:
		if h.Length < OpenRequestSize || h.Length > OpenRequestSize+PathMax {
			return nil, fmt.Errorf("%s: bad length %d", h.Op, h.Length)
		}
	case OpClose:
		if h.Length != CloseRequestSize {
			return nil, fmt.Errorf("%s: bad length %d", h.Op, h.Length)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, h.Op)
	}

	body := make([]byte, h.Length-HeaderSize)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%s: %w", h.Op, ErrShortRead)
		}
		return nil, err
	}

	if h.Op == OpClose {
		return &CloseRequest{ID: ByteOrder.Uint32(body)}, nil
	}

	var req OpenRequest
	if err := req.unmarshalBody(body); err != nil {
		return nil, err
	}
	return &req, nil
}
