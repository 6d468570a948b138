// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package drivertest provides an in-memory fake of driver.GPU/CmdBuffer so
// that package graph/frame/display tests - and cmd/democube, which has no
// cgo GPU backend to register - can exercise the full render-graph path
// and assert on the barrier/transition/draw calls an execution issues,
// without a real GPU.
package drivertest

import (
	"errors"
	"sync"

	"github.com/dataphract/reify/driver"
)

// GPU is a fake driver.GPU that records every command issued to the
// command buffers it creates, so tests can assert on exactly what a
// graph execution recorded.
type GPU struct {
	mu     sync.Mutex
	limits driver.Limits

	// CmdBuffers lists every command buffer ever created, in creation
	// order, so a test can inspect what was recorded into each.
	CmdBuffers []*CmdBuffer

	// CommitLog records every Commit call's command buffer batch.
	CommitLog [][]driver.CmdBuffer
}

// New creates a fake GPU with reasonable default limits.
func New() *GPU {
	return &GPU{
		limits: driver.Limits{
			MaxImage2D:   16384,
			MaxLayers:    2048,
			MaxDescHeaps: 8,
		},
	}
}

func (g *GPU) Driver() driver.Driver { return nil }

func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	g.mu.Lock()
	g.CommitLog = append(g.CommitLog, cb)
	g.mu.Unlock()
	if ch != nil {
		ch <- nil
	}
}

func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	cb := &CmdBuffer{}
	g.mu.Lock()
	g.CmdBuffers = append(g.CmdBuffers, cb)
	g.mu.Unlock()
	return cb, nil
}

func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	return &shaderCode{data: append([]byte(nil), data...)}, nil
}

func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return &descHeap{descs: ds}, nil
}

func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	return &descTable{heaps: dh}, nil
}

func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch state.(type) {
	case *driver.GraphState, *driver.CompState:
		return &pipeline{state: state}, nil
	}
	return nil, errors.New("drivertest: unknown pipeline state type")
}

func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	var data []byte
	if visible {
		data = make([]byte, size)
	}
	return &buffer{size: size, visible: visible, data: data, usage: usg}, nil
}

func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	return &image{
		format:  pf,
		size:    size,
		layers:  layers,
		levels:  levels,
		samples: samples,
		usage:   usg,
	}, nil
}

func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	return &sampler{}, nil
}

func (g *GPU) Limits() driver.Limits { return g.limits }

// shaderCode/descHeap/descTable/sampler are opaque fakes; graph/frame/
// display code never inspects their internals.
type shaderCode struct{ data []byte }

func (s *shaderCode) Destroy() { *s = shaderCode{} }

type descHeap struct{ descs []driver.Descriptor }

func (d *descHeap) Destroy() { *d = descHeap{} }

type descTable struct{ heaps []driver.DescHeap }

func (d *descTable) Destroy() { *d = descTable{} }

type sampler struct{}

func (s *sampler) Destroy() {}

type pipeline struct{ state any }

func (p *pipeline) Destroy() { p.state = nil }

// image is a fake driver.Image: it tracks its own descriptor for
// resolve-or-recreate comparisons in package graph's transient cache,
// but holds no real pixel storage.
type image struct {
	format  driver.PixelFmt
	size    driver.Dim3D
	layers  int
	levels  int
	samples int
	usage   driver.Usage
	views   []*imageView
}

func (im *image) Destroy() { *im = image{} }

func (im *image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	v := &imageView{img: im, typ: typ, layer: layer, layers: layers, level: level, levels: levels}
	im.views = append(im.views, v)
	return v, nil
}

type imageView struct {
	img    *image
	typ    driver.ViewType
	layer  int
	layers int
	level  int
	levels int
}

func (v *imageView) Destroy() { *v = imageView{} }

type buffer struct {
	size    int64
	visible bool
	data    []byte
	usage   driver.Usage
}

func (b *buffer) Destroy() { *b = buffer{} }

func (b *buffer) Visible() bool { return b.visible }

func (b *buffer) Bytes() []byte { return b.data }

func (b *buffer) Cap() int64 { return b.size }
