// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"fmt"

	"github.com/dataphract/reify/arena"
	"github.com/dataphract/reify/driver"
)

// resourceHistory is the per-resource producer/reader/consumer bookkeeping
// the editor maintains while the graph is being built. It also carries the
// producer's and readers' ResourceAccess values, since the compiler derives
// barrier parameters from them without re-walking every node's I/O.
type resourceHistory struct {
	producer       *GraphNode
	producerAccess ResourceAccess

	readers      []GraphNode
	readerAccess []ResourceAccess

	consumer       *GraphNode
	consumerAccess ResourceAccess

	usage driver.Usage

	hasLayout bool
	layout    driver.Layout
}

// Editor is the user-facing graph builder. It registers images, buffers and
// nodes, records each node's declared input/output access, and validates
// the single-producer/optional-single-consumer/reader-layout-agreement
// invariants as early as possible - at AddNode or builder-setter time,
// rather than deferring detection to Build.
type Editor struct {
	images  *arena.Arena[imageEntry]
	buffers *arena.Arena[bufferEntry]
	nodes   *arena.Arena[nodeEntry]
}

// NewEditor creates an empty graph editor.
func NewEditor() *Editor {
	return &Editor{
		images:  arena.New[imageEntry](),
		buffers: arena.New[bufferEntry](),
		nodes:   arena.New[nodeEntry](),
	}
}

// AddImage registers a new graph image and returns its key.
func (e *Editor) AddImage(label string, desc ImageDesc) GraphImage {
	return e.images.Insert(imageEntry{label: label, desc: desc})
}

// AddBuffer registers a new graph buffer and returns its key.
func (e *Editor) AddBuffer(label string, desc BufferDesc) GraphBuffer {
	return e.buffers.Insert(bufferEntry{label: label, desc: desc})
}

// AddNode registers node under label and folds its declared inputs and
// outputs into the per-resource access history, accumulating usage-flag
// contributions and panicking on a duplicate producer, a duplicate
// consumer, or a reader-layout disagreement.
func (e *Editor) AddNode(label string, node Node) GraphNode {
	key := e.nodes.InsertWith(func(k GraphNode) nodeEntry {
		return nodeEntry{label: label, node: node}
	})

	in := node.Inputs()
	for _, ii := range in.InImages {
		e.recordImageRead(ii.Key, key, ii.Access)
	}
	for _, ib := range in.InBuffers {
		e.recordBufferRead(ib.Key, key, ib.Access)
	}

	out := node.Outputs()
	for _, oi := range out.OutImages {
		e.recordImageWrite(oi.Key, key, oi.Consumed, oi.Access)
	}
	for _, ob := range out.OutBuffers {
		e.recordBufferWrite(ob.Key, key, ob.Consumed, ob.Access)
	}

	return key
}

func (e *Editor) recordImageRead(key GraphImage, node GraphNode, access ResourceAccess) {
	ent := e.images.GetPtr(key)
	if ent == nil {
		panic(fmt.Sprintf("%sAddNode: input names unknown image key", errPrefix))
	}
	h := &ent.hist
	if access.Layout != driver.LUndefined {
		if h.hasLayout && h.layout != access.Layout {
			panic(fmt.Sprintf("%sAddNode: readers of image %q disagree on required layout", errPrefix, ent.label))
		}
		h.hasLayout = true
		h.layout = access.Layout
	}
	h.usage |= access.Usage
	h.readers = append(h.readers, node)
	h.readerAccess = append(h.readerAccess, access)
}

func (e *Editor) recordBufferRead(key GraphBuffer, node GraphNode, access ResourceAccess) {
	ent := e.buffers.GetPtr(key)
	if ent == nil {
		panic(fmt.Sprintf("%sAddNode: input names unknown buffer key", errPrefix))
	}
	h := &ent.hist
	h.usage |= access.Usage
	h.readers = append(h.readers, node)
	h.readerAccess = append(h.readerAccess, access)
}

func (e *Editor) recordImageWrite(key GraphImage, node GraphNode, consumed *GraphImage, access ResourceAccess) {
	ent := e.images.GetPtr(key)
	if ent == nil {
		panic(fmt.Sprintf("%sAddNode: output names unknown image key", errPrefix))
	}
	h := &ent.hist
	if h.producer != nil {
		panic(fmt.Sprintf("%sAddNode: image %q already has a producer", errPrefix, ent.label))
	}
	n := node
	h.producer = &n
	h.producerAccess = access
	h.usage |= access.Usage

	if consumed != nil {
		cent := e.images.GetPtr(*consumed)
		if cent == nil {
			panic(fmt.Sprintf("%sAddNode: output consumes unknown image key", errPrefix))
		}
		if cent.hist.consumer != nil {
			panic(fmt.Sprintf("%sAddNode: image %q already has a consumer", errPrefix, cent.label))
		}
		cn := node
		cent.hist.consumer = &cn
		cent.hist.consumerAccess = access
	}
}

func (e *Editor) recordBufferWrite(key GraphBuffer, node GraphNode, consumed *GraphBuffer, access ResourceAccess) {
	ent := e.buffers.GetPtr(key)
	if ent == nil {
		panic(fmt.Sprintf("%sAddNode: output names unknown buffer key", errPrefix))
	}
	h := &ent.hist
	if h.producer != nil {
		panic(fmt.Sprintf("%sAddNode: buffer %q already has a producer", errPrefix, ent.label))
	}
	n := node
	h.producer = &n
	h.producerAccess = access
	h.usage |= access.Usage

	if consumed != nil {
		cent := e.buffers.GetPtr(*consumed)
		if cent == nil {
			panic(fmt.Sprintf("%sAddNode: output consumes unknown buffer key", errPrefix))
		}
		if cent.hist.consumer != nil {
			panic(fmt.Sprintf("%sAddNode: buffer %q already has a consumer", errPrefix, cent.label))
		}
		cn := node
		cent.hist.consumer = &cn
		cent.hist.consumerAccess = access
	}
}
