package wayland

import (
	"bufio"
	"io"
	"net"
	"sync"
)

type fakeMode struct {
	flags                  uint32
	width, height, refresh int32
}

type fakeOutput struct {
	version     uint32
	transform   int32
	make, model string
	modes       []fakeMode
	scale       int32
	name        string
}

const fakeFractionalGlobal = 100

// fakeCompositor answers the subset of requests the probe sends.
type fakeCompositor struct {
	outputs       []fakeOutput
	fractional    bool
	silent        bool
	protocolError bool

	mu         sync.Mutex
	bound      map[uint32]uint32 // object id -> global name
	released   []uint32
	fracFreed  bool
	serverDone chan struct{}
}

func (f *fakeCompositor) serve(c net.Conn) {
	f.bound = make(map[uint32]uint32)
	f.serverDone = make(chan struct{})
	go func() {
		defer close(f.serverDone)
		defer c.Close()
		r := bufio.NewReader(c)
		for {
			var h [headerSize]byte
			if _, err := io.ReadFull(r, h[:]); err != nil {
				return
			}
			sender, opcode, size, err := parseHeader(h[:])
			if err != nil {
				return
			}
			body := make([]byte, size-headerSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return
			}
			if f.silent {
				continue
			}
			if err := f.handle(c, sender, opcode, &decoder{body: body}); err != nil {
				return
			}
		}
	}()
}

func send(c net.Conn, msgs ...*encoder) error {
	for _, m := range msgs {
		if _, err := c.Write(m.bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCompositor) handle(c net.Conn, sender uint32, opcode uint16, d *decoder) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sender == displayID {
		switch opcode {
		case displayGetRegistry:
			registry := d.u32()
			var msgs []*encoder
			for i, o := range f.outputs {
				msgs = append(msgs, newMessage(registry, registryGlobal).u32(uint32(i+1)).str(outputInterface).u32(o.version))
			}
			msgs = append(msgs, newMessage(registry, registryGlobal).u32(50).str("wl_compositor").u32(6))
			if f.fractional {
				msgs = append(msgs, newMessage(registry, registryGlobal).u32(fakeFractionalGlobal).str(fractionalScaleInterface).u32(1))
			}
			return send(c, msgs...)
		case displaySync:
			cb := d.u32()
			if f.protocolError {
				return send(c, newMessage(displayID, displayError).u32(displayID).u32(1).str("invalid method"))
			}
			return send(c,
				newMessage(cb, callbackDone).u32(7),
				newMessage(displayID, displayDeleteID).u32(cb),
			)
		}
		return nil
	}

	if name, ok := f.bound[sender]; ok {
		if opcode == 0 {
			if name == fakeFractionalGlobal {
				f.fracFreed = true
			} else {
				f.released = append(f.released, name)
			}
		}
		return nil
	}

	// Anything else is the registry.
	if opcode != registryBind {
		return nil
	}
	name, iface, version, id := d.u32(), d.str(), d.u32(), d.u32()
	f.bound[id] = name
	if iface != outputInterface {
		return nil
	}
	o := f.outputs[name-1]
	msgs := []*encoder{
		newMessage(id, outputGeometry).i32(0).i32(0).i32(300).i32(190).i32(0).str(o.make).str(o.model).i32(o.transform),
	}
	for _, m := range o.modes {
		msgs = append(msgs, newMessage(id, outputMode).u32(m.flags).i32(m.width).i32(m.height).i32(m.refresh))
	}
	if version >= 2 {
		msgs = append(msgs, newMessage(id, outputScale).i32(o.scale))
	}
	if version >= 4 && o.name != "" {
		msgs = append(msgs,
			newMessage(id, outputName).str(o.name),
			newMessage(id, outputDescription).str(o.make+" "+o.model),
		)
	}
	if version >= 2 {
		msgs = append(msgs, newMessage(id, outputDone))
	}
	return send(c, msgs...)
}

func (f *fakeCompositor) releasedOutputs() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.released...)
}

func (f *fakeCompositor) fractionalFreed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fracFreed
}
