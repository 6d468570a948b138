// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"context"
	"fmt"

	"github.com/dataphract/reify/arena"
	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/frame"
)

// RuntimeConfig configures a Runtime.
type RuntimeConfig struct {
	// FramesInFlight is the number of transient-resource banks the
	// runtime cycles through. Zero defaults to 2.
	FramesInFlight int
}

// Runtime holds a compiled graph, one transient-resource bank per
// in-flight frame, the caller's logical-to-physical image bindings, and an
// executor that walks the compiled order emitting barriers and delegating
// to each node.
type Runtime struct {
	gpu      driver.GPU
	compiled *Compiled

	bindings *arena.Map[imageEntry, ImageBinding]
	banks    []*transientCache

	frameCounter uint64

	// curBank/curFC are valid only for the duration of one Execute call;
	// NodeContext.Image resolves through them.
	curBank *transientCache
	curFC   *frame.Context
}

// NewRuntime creates a runtime for compiled, backed by gpu.
func NewRuntime(gpu driver.GPU, compiled *Compiled, cfg RuntimeConfig) *Runtime {
	n := cfg.FramesInFlight
	if n <= 0 {
		n = 2
	}
	banks := make([]*transientCache, n)
	for i := range banks {
		banks[i] = newTransientCache(gpu)
	}
	return &Runtime{
		gpu:      gpu,
		compiled: compiled,
		bindings: arena.NewMap[imageEntry, ImageBinding](),
		banks:    banks,
	}
}

// BindSwapchain marks key as backed by the current frame's acquired
// swapchain image instead of a transient physical image.
func (rt *Runtime) BindSwapchain(key GraphImage) {
	rt.bindings.Insert(key, ImageBinding{Kind: BindingSwapchain})
}

// Destroy releases every transient physical image the runtime's banks
// hold.
func (rt *Runtime) Destroy() {
	for _, b := range rt.banks {
		b.destroy()
	}
}

// Execute resolves physical resources for the current frame, walks the
// compiled execution order, and records the node's commands - including
// the barriers each step requires - into fc's command buffer. It does not
// submit or present; that is driven by fc's owner (package display).
func (rt *Runtime) Execute(ctx context.Context, fc *frame.Context) error {
	bank := rt.banks[rt.frameCounter%uint64(len(rt.banks))]
	rt.curBank, rt.curFC = bank, fc
	defer func() { rt.curBank, rt.curFC = nil, nil }()

	cb := fc.CmdBuffer()
	compiled := rt.compiled

	for _, idx := range compiled.order {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		nodeKey := compiled.dg.Node(idx)
		entry := compiled.nodes.MustGet(nodeKey)

		var transitions []driver.Transition
		var barriers []driver.Barrier

		// Step a: initialize every output that doesn't consume a
		// prior image with an UNDEFINED -> required-layout transition.
		for _, oi := range entry.node.Outputs().OutImages {
			if oi.Consumed != nil {
				continue
			}
			_, view, err := rt.resolveImage(oi.Key)
			if err != nil {
				return fmt.Errorf("%sExecute: resolving output of %q: %w", errPrefix, entry.label, err)
			}
			transitions = append(transitions, driver.Transition{
				Barrier: driver.Barrier{
					SyncBefore:   oi.Access.Stage,
					SyncAfter:    oi.Access.Stage,
					AccessBefore: driver.ANone,
					AccessAfter:  oi.Access.Access,
				},
				LayoutBefore: driver.LUndefined,
				LayoutAfter:  oi.Access.Layout,
				IView:        view,
			})
		}

		// Step b: every dependency edge leaving this node carries the
		// barrier(s) its consumers require.
		for _, weight := range compiled.dg.OutEdges(idx) {
			for _, bd := range weight {
				if bd.Image != nil {
					_, view, err := rt.resolveImage(*bd.Image)
					if err != nil {
						return fmt.Errorf("%sExecute: resolving image barrier target: %w", errPrefix, err)
					}
					transitions = append(transitions, driver.Transition{
						Barrier: driver.Barrier{
							SyncBefore:   bd.SyncBefore,
							SyncAfter:    bd.SyncAfter,
							AccessBefore: bd.AccessBefore,
							AccessAfter:  bd.AccessAfter,
						},
						LayoutBefore: bd.LayoutBefore,
						LayoutAfter:  bd.LayoutAfter,
						IView:        view,
					})
				} else {
					barriers = append(barriers, driver.Barrier{
						SyncBefore:   bd.SyncBefore,
						SyncAfter:    bd.SyncAfter,
						AccessBefore: bd.AccessBefore,
						AccessAfter:  bd.AccessAfter,
					})
				}
			}
		}

		// Step c: batch this step's barriers into single calls.
		if len(barriers) > 0 {
			cb.Barrier(barriers)
		}
		if len(transitions) > 0 {
			cb.Transition(transitions)
		}

		// Step d: run the node inside its own debug label span,
		// guaranteed closed even if Execute panics.
		if err := rt.runNode(entry.label, entry.node, cb); err != nil {
			return err
		}
	}

	rt.frameCounter++
	return nil
}

func (rt *Runtime) runNode(label string, node Node, cb driver.CmdBuffer) (err error) {
	cb.BeginLabel(label, [4]float32{0, 0, 0, 1})
	defer cb.EndLabel()
	nc := &NodeContext{GPU: rt.gpu, CmdBuffer: cb, rt: rt}
	return node.Execute(nc)
}

// resolveImage resolves key's physical image/view/descriptor for the
// frame currently being executed.
func (rt *Runtime) resolveImage(key GraphImage) (driver.Image, driver.ImageView, error) {
	binding, _ := rt.bindings.Get(key)
	if binding.Kind == BindingSwapchain {
		return rt.curFC.SwapchainImage(), rt.curFC.SwapchainView(), nil
	}

	ent := rt.compiled.images.GetPtr(key)
	if ent == nil {
		return nil, nil, newErr("resolveImage: unknown image key")
	}
	return rt.curBank.resolve(key, ent.desc, ent.desc.Usage|ent.hist.usage)
}

// resolveImageDesc is like resolveImage but also returns the descriptor a
// node should use for viewport/scissor defaults - for a swapchain-bound
// image this is synthesized from the current frame's acquired extent and
// format rather than the editor's (possibly zero) ImageDesc.
func (rt *Runtime) resolveImageDesc(key GraphImage) (driver.Image, driver.ImageView, ImageDesc, error) {
	binding, _ := rt.bindings.Get(key)
	if binding.Kind == BindingSwapchain {
		w, h := rt.curFC.Extent()
		desc := ImageDesc{Format: rt.curFC.SwapchainFormat(), Width: w, Height: h}
		return rt.curFC.SwapchainImage(), rt.curFC.SwapchainView(), desc, nil
	}

	ent := rt.compiled.images.GetPtr(key)
	if ent == nil {
		return nil, nil, ImageDesc{}, newErr("resolveImageDesc: unknown image key")
	}
	img, view, err := rt.curBank.resolve(key, ent.desc, ent.desc.Usage|ent.hist.usage)
	return img, view, ent.desc, err
}
