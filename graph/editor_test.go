// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dataphract/reify/driver"
)

// fixtureNode is a minimal Node used to exercise the editor without
// pulling in render_pass.go/blit.go's richer behavior.
type fixtureNode struct {
	in  NodeIO
	out NodeIO
}

func (n *fixtureNode) Inputs() NodeIO           { return n.in }
func (n *fixtureNode) Outputs() NodeIO          { return n.out }
func (n *fixtureNode) Execute(*NodeContext) error { return nil }

func writeAccess(layout driver.Layout) ResourceAccess {
	return ResourceAccess{Stage: driver.SColorOutput, Access: driver.AColorWrite, Layout: layout, Usage: driver.URenderTarget}
}

func readAccess(layout driver.Layout) ResourceAccess {
	return ResourceAccess{Stage: driver.SFragmentShading, Access: driver.AShaderRead, Layout: layout, Usage: driver.UShaderSample}
}

func TestAddNodeDuplicateProducerPanics(t *testing.T) {
	e := NewEditor()
	img := e.AddImage("color", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})

	e.AddNode("first", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: img, Access: writeAccess(driver.LColorTarget)}}}})

	assert.Panics(t, func() {
		e.AddNode("second", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: img, Access: writeAccess(driver.LColorTarget)}}}})
	})
}

func TestAddNodeDuplicateConsumerPanics(t *testing.T) {
	e := NewEditor()
	a := e.AddImage("a", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})
	b := e.AddImage("b", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})
	c := e.AddImage("c", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})

	e.AddNode("produce a", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: a, Access: writeAccess(driver.LColorTarget)}}}})
	e.AddNode("consume a into b", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: b, Consumed: &a, Access: writeAccess(driver.LColorTarget)}}}})

	assert.Panics(t, func() {
		e.AddNode("consume a into c", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: c, Consumed: &a, Access: writeAccess(driver.LColorTarget)}}}})
	})
}

func TestAddNodeReaderLayoutDisagreementPanics(t *testing.T) {
	e := NewEditor()
	img := e.AddImage("tex", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})
	e.AddNode("producer", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: img, Access: writeAccess(driver.LColorTarget)}}}})

	e.AddNode("reader one", &fixtureNode{in: NodeIO{InImages: []InputImage{{Key: img, Access: readAccess(driver.LShaderRead)}}}})

	assert.Panics(t, func() {
		e.AddNode("reader two", &fixtureNode{in: NodeIO{InImages: []InputImage{{Key: img, Access: readAccess(driver.LCopySrc)}}}})
	})
}

func TestBuildUnknownFinalProducerPanics(t *testing.T) {
	e := NewEditor()
	img := e.AddImage("orphan", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})

	assert.Panics(t, func() {
		_, _ = e.Build(img)
	})
}

func TestBuildDiscardsUnreachableNodes(t *testing.T) {
	e := NewEditor()
	final := e.AddImage("final", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})
	unused := e.AddImage("unused", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})

	e.AddNode("produce final", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: final, Access: writeAccess(driver.LColorTarget)}}}})
	e.AddNode("produce unused", &fixtureNode{out: NodeIO{OutImages: []OutputImage{{Key: unused, Access: writeAccess(driver.LColorTarget)}}}})

	compiled, err := e.Build(final)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(compiled.order))
}

func TestBuildCycleReturnsErrCycle(t *testing.T) {
	e := NewEditor()
	a := e.AddImage("a", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})
	b := e.AddImage("b", ImageDesc{Format: driver.RGBA8un, Width: 4, Height: 4})

	// node1 reads a, writes b; node2 reads b, writes a: each depends on
	// the other's output, so the derived dependency graph has a 2-cycle.
	e.AddNode("node1", &fixtureNode{
		in:  NodeIO{InImages: []InputImage{{Key: a, Access: readAccess(driver.LShaderRead)}}},
		out: NodeIO{OutImages: []OutputImage{{Key: b, Access: writeAccess(driver.LColorTarget)}}},
	})
	e.AddNode("node2", &fixtureNode{
		in:  NodeIO{InImages: []InputImage{{Key: b, Access: readAccess(driver.LShaderRead)}}},
		out: NodeIO{OutImages: []OutputImage{{Key: a, Access: writeAccess(driver.LColorTarget)}}},
	})

	_, err := e.Build(a)
	assert.ErrorIs(t, err, ErrCycle)
}
