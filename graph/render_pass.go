// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"fmt"

	"github.com/dataphract/reify/driver"
)

// ColorAttachmentDesc describes one color attachment slot of a RenderPass,
// independent of which graph image eventually fills it.
type ColorAttachmentDesc struct {
	Load  driver.LoadOp
	Store driver.StoreOp
	Clear driver.ClearValue
}

// DSAttachmentDesc describes the depth/stencil attachment slot of a
// RenderPass. Depth and stencil aspects carry independent load/store ops.
type DSAttachmentDesc struct {
	LoadD  driver.LoadOp
	StoreD driver.StoreOp
	ClearD float32
	LoadS  driver.LoadOp
	StoreS driver.StoreOp
	ClearS uint32
}

// RenderPass declares the shape of a dynamic-rendering node: its color and
// optional depth/stencil attachment slots. AddRenderPass binds this shape to
// the editor; the returned RenderPassBuilder attaches concrete graph images
// to each slot and the pipelines that draw into them.
type RenderPass struct {
	ColorAttachments       []ColorAttachmentDesc
	DepthStencilAttachment *DSAttachmentDesc
}

type colorSlot struct {
	desc     ColorAttachmentDesc
	key      *GraphImage
	consumed *GraphImage
}

type dsSlot struct {
	desc     DSAttachmentDesc
	key      *GraphImage
	consumed *GraphImage
}

// GraphicsPipelineInstance is one graphics pipeline drawn within a render
// pass node, along with the callback that records its draw commands.
type GraphicsPipelineInstance struct {
	State *driver.GraphState

	pipeline driver.Pipeline
	execute  func(*GraphicsPipelineInstance) error
}

// Pipeline returns the resolved driver pipeline for this instance, valid
// only from inside the instance's Execute callback.
func (pi *GraphicsPipelineInstance) Pipeline() driver.Pipeline { return pi.pipeline }

// RenderPassBuilder attaches graph images and graphics pipelines to a
// render-pass node registered via Editor.AddRenderPass. The builder itself
// implements Node: its Inputs/Outputs reflect whichever attachments have
// been set so far, and are read by Editor.Build only after the caller has
// finished configuring it.
type RenderPassBuilder struct {
	e     *Editor
	key   GraphNode
	label string

	colors []colorSlot
	ds     *dsSlot

	pipelines []*GraphicsPipelineInstance
}

// AddRenderPass registers a render-pass node shaped by pass and returns a
// builder for attaching its graph images and pipelines.
func (e *Editor) AddRenderPass(label string, pass RenderPass) *RenderPassBuilder {
	b := &RenderPassBuilder{
		e:      e,
		label:  label,
		colors: make([]colorSlot, len(pass.ColorAttachments)),
	}
	for i, ca := range pass.ColorAttachments {
		b.colors[i] = colorSlot{desc: ca}
	}
	if pass.DepthStencilAttachment != nil {
		b.ds = &dsSlot{desc: *pass.DepthStencilAttachment}
	}
	b.key = e.nodes.InsertWith(func(k GraphNode) nodeEntry {
		return nodeEntry{label: label, node: b}
	})
	return b
}

// SetColorAttachment binds img to the render pass's color attachment at
// slot, optionally declaring that it supersedes the contents of consumed.
// It panics if slot is out of range or already bound.
func (b *RenderPassBuilder) SetColorAttachment(slot int, img GraphImage, consumed *GraphImage) *RenderPassBuilder {
	if slot < 0 || slot >= len(b.colors) {
		panic(fmt.Sprintf("%sSetColorAttachment: render pass %q has no color slot %d", errPrefix, b.label, slot))
	}
	cs := &b.colors[slot]
	if cs.key != nil {
		panic(fmt.Sprintf("%sSetColorAttachment: render pass %q color slot %d already bound", errPrefix, b.label, slot))
	}
	k := img
	cs.key = &k
	cs.consumed = consumed

	access := ResourceAccess{
		Stage:  driver.SColorOutput,
		Access: driver.AColorWrite,
		Layout: driver.LColorTarget,
		Usage:  driver.URenderTarget,
	}
	b.e.recordImageWrite(img, b.key, consumed, access)
	return b
}

// SetDepthStencilAttachment binds img to the render pass's depth/stencil
// attachment, optionally declaring that it supersedes consumed. It panics
// if the pass declares no depth/stencil attachment or one is already bound.
func (b *RenderPassBuilder) SetDepthStencilAttachment(img GraphImage, consumed *GraphImage) *RenderPassBuilder {
	if b.ds == nil {
		panic(fmt.Sprintf("%sSetDepthStencilAttachment: render pass %q declares no depth/stencil slot", errPrefix, b.label))
	}
	if b.ds.key != nil {
		panic(fmt.Sprintf("%sSetDepthStencilAttachment: render pass %q depth/stencil slot already bound", errPrefix, b.label))
	}
	k := img
	b.ds.key = &k
	b.ds.consumed = consumed

	access := ResourceAccess{
		Stage:  driver.SDSOutput,
		Access: driver.ADSWrite,
		Layout: driver.LDSTarget,
		Usage:  driver.URenderTarget,
	}
	b.e.recordImageWrite(img, b.key, consumed, access)
	return b
}

// AddGraphicsPipeline attaches a graphics pipeline to the render pass,
// drawn by execute once the pass has begun dynamic rendering. Pipelines
// run in the order they are added.
func (b *RenderPassBuilder) AddGraphicsPipeline(state *driver.GraphState, execute func(*GraphicsPipelineInstance) error) *GraphicsPipelineInstance {
	pi := &GraphicsPipelineInstance{State: state, execute: execute}
	b.pipelines = append(b.pipelines, pi)
	return pi
}

// Inputs returns no declared resources: the render pass node only writes
// the attachments bound to it. Resources a pipeline samples from are
// expected to be bound through its own descriptor tables, outside the
// graph's resource-tracking.
func (b *RenderPassBuilder) Inputs() NodeIO { return NodeIO{} }

// Outputs returns one OutputImage per bound attachment slot.
func (b *RenderPassBuilder) Outputs() NodeIO {
	var io NodeIO
	for _, cs := range b.colors {
		if cs.key == nil {
			continue
		}
		io.OutImages = append(io.OutImages, OutputImage{
			Key:      *cs.key,
			Consumed: cs.consumed,
			Access: ResourceAccess{
				Stage:  driver.SColorOutput,
				Access: driver.AColorWrite,
				Layout: driver.LColorTarget,
				Usage:  driver.URenderTarget,
			},
		})
	}
	if b.ds != nil && b.ds.key != nil {
		io.OutImages = append(io.OutImages, OutputImage{
			Key:      *b.ds.key,
			Consumed: b.ds.consumed,
			Access: ResourceAccess{
				Stage:  driver.SDSOutput,
				Access: driver.ADSWrite,
				Layout: driver.LDSTarget,
				Usage:  driver.URenderTarget,
			},
		})
	}
	return io
}

// Execute resolves every bound attachment, begins dynamic rendering over
// them, sets a default viewport/scissor covering the first color
// attachment's extent, and runs each attached pipeline's Execute callback
// in its own debug label span.
func (b *RenderPassBuilder) Execute(nodeCtx *NodeContext) error {
	var (
		colorTargets []driver.ColorTarget
		width        int
		height       int
	)
	for _, cs := range b.colors {
		if cs.key == nil {
			colorTargets = append(colorTargets, driver.ColorTarget{})
			continue
		}
		_, view, desc := nodeCtx.Image(*cs.key)
		if width == 0 {
			width, height = desc.Width, desc.Height
		}
		colorTargets = append(colorTargets, driver.ColorTarget{
			Color: view,
			Load:  cs.desc.Load,
			Store: cs.desc.Store,
			Clear: cs.desc.Clear,
		})
	}

	var dsTarget *driver.DSTarget
	if b.ds != nil && b.ds.key != nil {
		_, view, desc := nodeCtx.Image(*b.ds.key)
		if width == 0 {
			width, height = desc.Width, desc.Height
		}
		dsTarget = &driver.DSTarget{
			DS:     view,
			LoadD:  b.ds.desc.LoadD,
			StoreD: b.ds.desc.StoreD,
			ClearD: b.ds.desc.ClearD,
			LoadS:  b.ds.desc.LoadS,
			StoreS: b.ds.desc.StoreS,
			ClearS: b.ds.desc.ClearS,
		}
	}

	nodeCtx.CmdBuffer.BeginPass(width, height, 1, colorTargets, dsTarget)
	nodeCtx.CmdBuffer.SetViewport([]driver.Viewport{{
		X: 0, Y: 0, Width: float32(width), Height: float32(height), Znear: 0, Zfar: 1,
	}})
	nodeCtx.CmdBuffer.SetScissor([]driver.Scissor{{X: 0, Y: 0, Width: width, Height: height}})

	for _, pi := range b.pipelines {
		if pi.pipeline == nil {
			pl, err := nodeCtx.GPU.NewPipeline(pi.State)
			if err != nil {
				nodeCtx.CmdBuffer.EndPass()
				return fmt.Errorf("%sExecute: creating pipeline for render pass %q: %w", errPrefix, b.label, err)
			}
			pi.pipeline = pl
		}
		nodeCtx.CmdBuffer.SetPipeline(pi.pipeline)
		nodeCtx.CmdBuffer.BeginLabel(b.label, [4]float32{0, 0, 0, 1})
		err := pi.execute(pi)
		nodeCtx.CmdBuffer.EndLabel()
		if err != nil {
			nodeCtx.CmdBuffer.EndPass()
			return err
		}
	}

	nodeCtx.CmdBuffer.EndPass()
	return nil
}
