// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package graph implements a render graph: a directed acyclic collection of
// nodes that read and write GPU-resident images and buffers. An Editor
// builds the graph; Editor.Build compiles it into an immutable Compiled
// value with a linear execution order and the minimal set of barriers
// needed between nodes; a Runtime resolves logical resources to physical
// ones and executes the compiled order against a driver.GPU.
package graph

import (
	"errors"
	"fmt"

	"github.com/dataphract/reify/arena"
	"github.com/dataphract/reify/depgraph"
	"github.com/dataphract/reify/driver"
)

const errPrefix = "graph: "

func newErr(reason string) error { return errors.New(errPrefix + reason) }

// Tiling is the memory tiling of a graph image.
type Tiling int

const (
	TilingOptimal Tiling = iota
	TilingLinear
)

// ImageDesc describes a graph image's format, extent, tiling and usage.
// Two resolutions of the same graph image compare equal by value, which
// the transient cache uses to decide whether a physical image must be
// recreated.
type ImageDesc struct {
	Format driver.PixelFmt
	Width  int
	Height int
	Tiling Tiling
	Usage  driver.Usage
}

// BufferClass distinguishes the memory-location hint of a graph buffer.
type BufferClass int

const (
	// BufferClassDownload is device-local memory with no CPU access,
	// read back through an explicit copy.
	BufferClassDownload BufferClass = iota
	// BufferClassUploadConstant is host-visible memory sized for small,
	// frequently updated constant data.
	BufferClassUploadConstant
	// BufferClassUploadStaging is host-visible memory used as the
	// source of a copy into device-local storage.
	BufferClassUploadStaging
)

// BufferDesc describes a graph buffer's size, usage and memory class.
type BufferDesc struct {
	Size  int64
	Usage driver.Usage
	Class BufferClass
}

// imageEntry is the editor's per-image bookkeeping.
type imageEntry struct {
	label string
	desc  ImageDesc
	hist  resourceHistory
}

// bufferEntry is the editor's per-buffer bookkeeping.
type bufferEntry struct {
	label string
	desc  BufferDesc
	hist  resourceHistory
}

// nodeEntry is the editor's per-node bookkeeping.
type nodeEntry struct {
	label string
	node  Node
}

// GraphImage, GraphBuffer and GraphNode are the opaque keys identifying
// resources and nodes within one graph.
type (
	GraphImage = arena.Key[imageEntry]
	GraphBuffer = arena.Key[bufferEntry]
	GraphNode   = arena.Key[nodeEntry]
)

// ResourceAccess describes how a node touches a resource: which pipeline
// stages and access types it participates in, which image layout it
// requires (images only; ignored for buffers), and which usage bits it
// contributes to the resource's accumulated usage mask.
type ResourceAccess struct {
	Stage  driver.Sync
	Access driver.Access
	Layout driver.Layout
	Usage  driver.Usage
}

// InputImage declares a node's read of a graph image.
type InputImage struct {
	Key    GraphImage
	Access ResourceAccess
}

// OutputImage declares a node's write of a graph image. Consumed, if
// non-nil, names a preceding graph image whose contents this output
// supersedes, deriving a write-after-write or write-after-read edge at
// compile time.
type OutputImage struct {
	Key      GraphImage
	Consumed *GraphImage
	Access   ResourceAccess
}

// InputBuffer declares a node's read of a graph buffer.
type InputBuffer struct {
	Key    GraphBuffer
	Access ResourceAccess
}

// OutputBuffer declares a node's write of a graph buffer. Consumed mirrors
// OutputImage.Consumed.
type OutputBuffer struct {
	Key      GraphBuffer
	Consumed *GraphBuffer
	Access   ResourceAccess
}

// NodeIO bundles the image and buffer slots a node declares, as returned
// separately by Node.Inputs and Node.Outputs - only the relevant fields of
// each returned value are populated (an Inputs result never sets OutImages/
// OutBuffers, an Outputs result never sets InImages/InBuffers).
type NodeIO struct {
	InImages   []InputImage
	OutImages  []OutputImage
	InBuffers  []InputBuffer
	OutBuffers []OutputBuffer
}

// Node is a single GPU operation with declared, immutable input/output
// slots. Built-in nodes are the render-pass node (render_pass.go) and the
// blit node (blit.go); callers may implement Node directly for custom
// operations.
type Node interface {
	// Inputs returns the resources this node reads.
	Inputs() NodeIO
	// Outputs returns the resources this node writes.
	Outputs() NodeIO
	// Execute performs the node's work by recording commands into
	// nodeCtx's command buffer.
	Execute(nodeCtx *NodeContext) error
}

// NodeContext is the state a node's Execute method observes: the device
// handle, the command buffer commands are recorded into, and resolved
// physical handles for every GraphImage the node declared.
type NodeContext struct {
	GPU       driver.GPU
	CmdBuffer driver.CmdBuffer

	rt *Runtime
}

// Image returns the physical image, default view and resolved descriptor
// bound to key in the current frame. It panics if key does not identify an
// image of the compiled graph or its physical image cannot be resolved. It
// does not check that the node declared key in its own Inputs/Outputs.
func (nc *NodeContext) Image(key GraphImage) (driver.Image, driver.ImageView, ImageDesc) {
	img, view, desc, err := nc.rt.resolveImageDesc(key)
	if err != nil {
		panic(fmt.Sprintf("%sNodeContext.Image: %v", errPrefix, err))
	}
	return img, view, desc
}

// BindingKind selects how a graph image's physical storage is provided.
type BindingKind int

const (
	// BindingTransient is the default: the runtime allocates and owns
	// physical storage from its transient cache.
	BindingTransient BindingKind = iota
	// BindingSwapchain marks a graph image as backed by the current
	// frame's acquired swapchain image view.
	BindingSwapchain
)

// ImageBinding records how a graph image's physical storage is resolved.
type ImageBinding struct {
	Kind BindingKind
}

// ErrCycle is returned by Editor.Build when the derived dependency graph
// contains a cycle - a data-dependent error, not a programming bug, so it
// is returned rather than a panic.
var ErrCycle = depgraph.ErrCycle
