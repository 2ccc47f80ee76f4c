// Package prototest provides an in-process peer that speaks the sapwood
// protocol over a unix socket. It decodes nothing and allocates no real
// drawables: handles in replies are whatever the OpenFunc returns.
package prototest

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ItsNotGoodName/x-sapwood/internal/proto"
)

// OpenFunc builds the reply for an OPEN request. The returned bytes are
// written as-is, so a test can send short or malformed replies.
type OpenFunc func(id uint32, req proto.OpenRequest) []byte

type Server struct {
	Path string

	ln     net.Listener
	openFn OpenFunc

	mu       sync.Mutex
	nextID   uint32
	live     map[uint32]int
	opens    []proto.OpenRequest
	closes   []uint32
	rejected []uint32
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer starts a peer listening in a temporary directory. It is shut down
// when the test ends.
func NewServer(t testing.TB, fn OpenFunc) *Server {
	t.Helper()
	return Listen(t, filepath.Join(t.TempDir(), "sapwood.sock"), fn)
}

// Listen is NewServer on a caller chosen socket path.
func Listen(t testing.TB, path string, fn OpenFunc) *Server {
	t.Helper()

	if fn == nil {
		fn = Reply(1, 1, nil, nil)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("prototest: listen: %v", err)
	}

	s := &Server{
		Path:   path,
		ln:     ln,
		openFn: fn,
		live:   make(map[uint32]int),
		conns:  make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)

	return s
}

// Reply returns an OpenFunc answering every request with the given geometry
// and handles.
func Reply(width, height int32, pixmap, pixmask *[3][3]proto.XID) OpenFunc {
	return func(id uint32, req proto.OpenRequest) []byte {
		rep := proto.OpenResponse{ID: id, Width: width, Height: height}
		if pixmap != nil {
			rep.Pixmap = *pixmap
		}
		if pixmask != nil {
			rep.Pixmask = *pixmask
		}
		b, _ := rep.MarshalBinary()
		return b
	}
}

func (s *Server) Close() {
	s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		req, err := proto.ReadRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("prototest: read request", "error", err)
			}
			return
		}

		switch req := req.(type) {
		case *proto.OpenRequest:
			s.mu.Lock()
			s.nextID++
			id := s.nextID
			s.live[id]++
			s.opens = append(s.opens, *req)
			s.mu.Unlock()

			rep := s.openFn(id, *req)
			if _, err := conn.Write(rep); err != nil {
				return
			}
			// A peer that dies mid-reply.
			if len(rep) < proto.OpenResponseSize {
				return
			}
		case *proto.CloseRequest:
			s.mu.Lock()
			if s.live[req.ID] > 0 {
				s.live[req.ID]--
				if s.live[req.ID] == 0 {
					delete(s.live, req.ID)
				}
				s.closes = append(s.closes, req.ID)
			} else {
				s.rejected = append(s.rejected, req.ID)
			}
			s.mu.Unlock()
		}
	}
}

// Opens returns every OPEN request received so far.
func (s *Server) Opens() []proto.OpenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]proto.OpenRequest(nil), s.opens...)
}

// Closes returns the ids of accepted CLOSE requests.
func (s *Server) Closes() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.closes...)
}

// Rejected returns the ids of CLOSE requests for ids that were not live.
func (s *Server) Rejected() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.rejected...)
}

// Live reports the server-side reference count of id.
func (s *Server) Live(id uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[id]
}

// Conns reports the number of connected clients.
func (s *Server) Conns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
