package x11

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/require"
)

// Core and RandR request opcodes answered by fakeServer.
const (
	opInternAtom     = 16
	opGetProperty    = 20
	opQueryExtension = 98

	randrOpcode                   = 140
	randrGetOutputInfo            = 9
	randrGetCrtcInfo              = 20
	randrGetScreenResourcesCurrent = 25
)

type fakeProp struct {
	typ    xproto.Atom
	format byte // 8 or 32
	value  []byte
}

type fakeOutput struct {
	id   randr.Output
	name string
	crtc randr.Crtc
}

type fakeCrtc struct {
	mode     randr.Mode
	rotation uint16
}

// fakeServer answers the subset of the X11 core protocol and RandR that the
// probe uses. Requests it does not know get no reply.
type fakeServer struct {
	root    xproto.Window
	noRandR bool
	silent  bool // accept the connection but never send the setup reply

	atoms   map[string]xproto.Atom
	props   map[[2]uint32]fakeProp // window, property
	modes   []randr.ModeInfo
	outputs []fakeOutput
	crtcs   map[randr.Crtc]fakeCrtc

	mu    sync.Mutex
	conns []net.Conn
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		root:  0x100,
		atoms: make(map[string]xproto.Atom),
		props: make(map[[2]uint32]fakeProp),
		crtcs: make(map[randr.Crtc]fakeCrtc),
	}
}

func (s *fakeServer) atom(name string) xproto.Atom {
	if a, ok := s.atoms[name]; ok {
		return a
	}
	a := xproto.Atom(300 + len(s.atoms))
	s.atoms[name] = a
	return a
}

func (s *fakeServer) setProp(w xproto.Window, name string, typ xproto.Atom, format byte, value []byte) {
	s.props[[2]uint32{uint32(w), uint32(s.atom(name))}] = fakeProp{typ: typ, format: format, value: value}
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	xgb.Put32(b, v)
	return b
}

// start listens on a socket in a temp dir and returns the DISPLAY string
// addressing it.
func (s *fakeServer) start(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XAUTHORITY", filepath.Join(dir, "Xauthority"))

	base := filepath.Join(dir, "X")
	l, err := net.Listen("unix", base+":0")
	require.NoError(t, err)
	t.Cleanup(func() {
		l.Close()
		s.mu.Lock()
		for _, c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
	})

	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.conns = append(s.conns, c)
			s.mu.Unlock()
			go s.serve(c)
		}
	}()
	return base + ":0"
}

func (s *fakeServer) serve(c net.Conn) {
	defer c.Close()

	head := make([]byte, 12)
	if _, err := io.ReadFull(c, head); err != nil {
		return
	}
	authLen := xgb.Pad(int(xgb.Get16(head[6:]))) + xgb.Pad(int(xgb.Get16(head[8:])))
	if _, err := io.CopyN(io.Discard, c, int64(authLen)); err != nil {
		return
	}
	if s.silent {
		io.Copy(io.Discard, c)
		return
	}
	if _, err := c.Write(s.setup()); err != nil {
		return
	}

	var seq uint16
	for {
		h := make([]byte, 4)
		if _, err := io.ReadFull(c, h); err != nil {
			return
		}
		size := int(xgb.Get16(h[2:])) * 4
		if size < 4 {
			return
		}
		req := make([]byte, size)
		copy(req, h)
		if _, err := io.ReadFull(c, req[4:]); err != nil {
			return
		}
		seq++
		reply := s.handle(req)
		if reply == nil {
			continue
		}
		xgb.Put16(reply[2:], seq)
		if _, err := c.Write(reply); err != nil {
			return
		}
	}
}

func (s *fakeServer) setup() []byte {
	info := xproto.SetupInfo{
		Status:               1,
		ProtocolMajorVersion: 11,
		ResourceIdBase:       0x200000,
		ResourceIdMask:       0x1fffff,
		VendorLen:            4,
		Vendor:               "fake",
		MaximumRequestLength: 0xffff,
		RootsLen:             1,
		Roots: []xproto.ScreenInfo{{
			Root:           s.root,
			WidthInPixels:  1920,
			HeightInPixels: 1080,
			RootDepth:      24,
		}},
	}
	b := info.Bytes()
	xgb.Put16(b[6:], uint16((len(b)-8)/4))
	return b
}

// newReply returns a reply of at least 32 bytes whose length field counts
// the words after the first 32.
func newReply(b []byte) []byte {
	for len(b) < 32 || len(b)%4 != 0 {
		b = append(b, 0)
	}
	b[0] = 1
	xgb.Put32(b[4:], uint32((len(b)-32)/4))
	return b
}

func (s *fakeServer) handle(req []byte) []byte {
	switch req[0] {
	case opQueryExtension:
		n := int(xgb.Get16(req[4:]))
		b := make([]byte, 32)
		if string(req[8:8+n]) == "RANDR" && !s.noRandR {
			b[8] = 1
			b[9] = randrOpcode
		}
		return newReply(b)

	case opInternAtom:
		n := int(xgb.Get16(req[4:]))
		b := make([]byte, 32)
		xgb.Put32(b[8:], uint32(s.atoms[string(req[8:8+n])]))
		return newReply(b)

	case opGetProperty:
		key := [2]uint32{xgb.Get32(req[4:]), xgb.Get32(req[8:])}
		b := make([]byte, 32)
		if p, ok := s.props[key]; ok {
			b[1] = p.format
			xgb.Put32(b[8:], uint32(p.typ))
			xgb.Put32(b[16:], uint32(len(p.value)/int(p.format/8)))
			b = append(b, p.value...)
		}
		return newReply(b)

	case randrOpcode:
		return s.handleRandR(req)
	}
	return nil
}

func (s *fakeServer) handleRandR(req []byte) []byte {
	switch req[1] {
	case randrGetScreenResourcesCurrent:
		b := make([]byte, 32)
		xgb.Put32(b[12:], 1) // config timestamp
		xgb.Put16(b[16:], uint16(len(s.crtcs)))
		xgb.Put16(b[18:], uint16(len(s.outputs)))
		xgb.Put16(b[20:], uint16(len(s.modes)))
		for id := range s.crtcs {
			b = append(b, u32(uint32(id))...)
		}
		for _, o := range s.outputs {
			b = append(b, u32(uint32(o.id))...)
		}
		for _, m := range s.modes {
			b = append(b, m.Bytes()...)
		}
		return newReply(b)

	case randrGetOutputInfo:
		id := randr.Output(xgb.Get32(req[4:]))
		for _, o := range s.outputs {
			if o.id != id {
				continue
			}
			b := make([]byte, 36)
			xgb.Put32(b[12:], uint32(o.crtc))
			xgb.Put16(b[34:], uint16(len(o.name)))
			b = append(b, o.name...)
			return newReply(b)
		}
		return newReply(make([]byte, 36))

	case randrGetCrtcInfo:
		c := s.crtcs[randr.Crtc(xgb.Get32(req[4:]))]
		b := make([]byte, 32)
		xgb.Put32(b[20:], uint32(c.mode))
		xgb.Put16(b[24:], c.rotation)
		return newReply(b)
	}
	return nil
}

// fakeProcRoot writes a procfs tree with one process.
func fakeProcRoot(t *testing.T, pid int, argv0 string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(argv0+"\x00"), 0644))
	return root
}
