// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package drivertest

import "github.com/dataphract/reify/driver"

// PassRecord captures one BeginPass/EndPass scope for assertions.
type PassRecord struct {
	Width, Height, Layers int
	Color                 []driver.ColorTarget
	DS                     *driver.DSTarget
}

// LabelRecord captures one BeginLabel/EndLabel pair.
type LabelRecord struct {
	Name  string
	Color [4]float32
}

// DrawRecord captures one Draw/DrawIndexed call.
type DrawRecord struct {
	Indexed               bool
	VertCount, InstCount  int
	BaseVert, BaseInst    int
	IdxCount, VertOff     int
}

// CmdBuffer is a fake driver.CmdBuffer that records every call instead
// of issuing GPU work, so graph/frame/display tests can assert on the
// exact sequence and parameters of barriers, passes, and draws a graph
// execution produced.
type CmdBuffer struct {
	begun   bool
	ended   bool

	Passes     []PassRecord
	Labels     []LabelRecord
	labelDepth int
	Barriers   [][]driver.Barrier
	Transitions [][]driver.Transition
	Draws      []DrawRecord
	Pipeline   driver.Pipeline
}

func (cb *CmdBuffer) Destroy() { *cb = CmdBuffer{} }

func (cb *CmdBuffer) Begin() error {
	cb.begun = true
	cb.ended = false
	return nil
}

func (cb *CmdBuffer) BeginPass(width, height, layers int, color []driver.ColorTarget, ds *driver.DSTarget) {
	cb.Passes = append(cb.Passes, PassRecord{Width: width, Height: height, Layers: layers, Color: color, DS: ds})
}

func (cb *CmdBuffer) EndPass() {}

func (cb *CmdBuffer) BeginWork(wait bool) {}

func (cb *CmdBuffer) EndWork() {}

func (cb *CmdBuffer) BeginBlit(wait bool) {}

func (cb *CmdBuffer) EndBlit() {}

func (cb *CmdBuffer) SetPipeline(pl driver.Pipeline) { cb.Pipeline = pl }

func (cb *CmdBuffer) SetViewport(vp []driver.Viewport) {}

func (cb *CmdBuffer) SetScissor(sciss []driver.Scissor) {}

func (cb *CmdBuffer) SetBlendColor(r, g, b, a float32) {}

func (cb *CmdBuffer) SetStencilRef(value uint32) {}

func (cb *CmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {}

func (cb *CmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {}

func (cb *CmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}

func (cb *CmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {}

func (cb *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	cb.Draws = append(cb.Draws, DrawRecord{VertCount: vertCount, InstCount: instCount, BaseVert: baseVert, BaseInst: baseInst})
}

func (cb *CmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	cb.Draws = append(cb.Draws, DrawRecord{Indexed: true, IdxCount: idxCount, InstCount: instCount, BaseVert: baseIdx, VertOff: vertOff, BaseInst: baseInst})
}

func (cb *CmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {}

func (cb *CmdBuffer) CopyBuffer(param *driver.BufferCopy) {}

func (cb *CmdBuffer) CopyImage(param *driver.ImageCopy) {}

func (cb *CmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {}

func (cb *CmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {}

func (cb *CmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {}

func (cb *CmdBuffer) BeginLabel(name string, color [4]float32) {
	cb.Labels = append(cb.Labels, LabelRecord{Name: name, Color: color})
	cb.labelDepth++
}

func (cb *CmdBuffer) EndLabel() {
	cb.labelDepth--
}

// LabelBalanced reports whether every BeginLabel call was matched by an
// EndLabel - the property that the runtime's defer-guaranteed span
// popping (see graph.Runtime.Execute) must uphold even when a node
// panics.
func (cb *CmdBuffer) LabelBalanced() bool { return cb.labelDepth == 0 }

func (cb *CmdBuffer) Barrier(b []driver.Barrier) {
	cb.Barriers = append(cb.Barriers, b)
}

func (cb *CmdBuffer) Transition(t []driver.Transition) {
	cb.Transitions = append(cb.Transitions, t)
}

func (cb *CmdBuffer) End() error {
	if !cb.begun {
		return errNotBegun
	}
	cb.ended = true
	return nil
}

func (cb *CmdBuffer) Reset() error {
	passes, labels, barriers, transitions, draws := cb.Passes[:0], cb.Labels[:0], cb.Barriers[:0], cb.Transitions[:0], cb.Draws[:0]
	*cb = CmdBuffer{Passes: passes, Labels: labels, Barriers: barriers, Transitions: transitions, Draws: draws}
	return nil
}

var errNotBegun = &cmdError{"drivertest: End called before Begin"}

type cmdError struct{ s string }

func (e *cmdError) Error() string { return e.s }
