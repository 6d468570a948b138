// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"fmt"

	"github.com/dataphract/reify/arena"
	"github.com/dataphract/reify/depgraph"
	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/internal/rlog"
)

// BarrierDesc carries the parameters of one synchronization barrier derived
// between two nodes during compilation. Exactly one of Image/Buffer is set,
// identifying which resource the barrier concerns; LayoutBefore/LayoutAfter
// are only meaningful when Image is set.
type BarrierDesc struct {
	Image  *GraphImage
	Buffer *GraphBuffer

	SyncBefore, SyncAfter     driver.Sync
	AccessBefore, AccessAfter driver.Access
	LayoutBefore, LayoutAfter driver.Layout
}

// Compiled is an immutable, totally ordered render graph produced by
// Editor.Build. It is shared via a plain pointer: Go's garbage collector
// already provides the lifetime guarantee a reference-counted handle would.
type Compiled struct {
	images  *arena.Arena[imageEntry]
	buffers *arena.Arena[bufferEntry]
	nodes   *arena.Arena[nodeEntry]

	dg    *depgraph.Graph[GraphNode, []BarrierDesc]
	order []int

	final GraphImage
}

// Build compiles the editor's current contents into an immutable graph
// ready for execution, with final as the designated output image.
//
// Compilation proceeds in four steps: a liveness BFS backwards from final's
// producer discards nodes that cannot affect it; a dependency graph is
// populated with read-after-write, write-after-write and write-after-read
// edges annotated with barrier parameters; a reverse topological sort
// yields the linear execution order; the result is frozen into a Compiled
// value. A cycle in the derived dependency graph is a data-dependent error
// and is returned as ErrCycle rather than a panic.
func (e *Editor) Build(final GraphImage) (*Compiled, error) {
	finalEnt := e.images.GetPtr(final)
	if finalEnt == nil {
		panic(fmt.Sprintf("%sBuild: final names unknown image key", errPrefix))
	}
	if finalEnt.hist.producer == nil {
		panic(fmt.Sprintf("%sBuild: final image %q has no producer", errPrefix, finalEnt.label))
	}

	live := e.computeLiveness(*finalEnt.hist.producer)

	dg := depgraph.New[GraphNode, []BarrierDesc]()
	nodeIdx := make(map[uint32]int, len(live))
	for _, ent := range e.nodes.All() {
		if live[ent.Key.Index()] {
			nodeIdx[ent.Key.Index()] = dg.AddNode(ent.Key)
		}
	}

	for _, ent := range e.nodes.All() {
		if !live[ent.Key.Index()] {
			continue
		}
		thisIdx := nodeIdx[ent.Key.Index()]
		e.addDependencyEdges(dg, nodeIdx, ent.Key, thisIdx, ent.Val.node)
	}

	order, err := dg.ToposortReverse()
	if err != nil {
		return nil, err
	}

	return &Compiled{
		images:  e.images,
		buffers: e.buffers,
		nodes:   e.nodes,
		dg:      dg,
		order:   order,
		final:   final,
	}, nil
}

// computeLiveness performs the reverse-reachability BFS described in step 1
// of Build, starting from root (the producer of the final image). It
// returns the set of live node indices and logs the labels of every node
// that was discarded as unreachable.
func (e *Editor) computeLiveness(root GraphNode) map[uint32]bool {
	live := map[uint32]bool{root.Index(): true}
	queue := []GraphNode{root}

	enqueue := func(n GraphNode) {
		if !live[n.Index()] {
			live[n.Index()] = true
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		node := e.nodes.MustGet(n).node

		in := node.Inputs()
		for _, ii := range in.InImages {
			if h := e.images.GetPtr(ii.Key); h != nil && h.hist.producer != nil {
				enqueue(*h.hist.producer)
			}
		}
		for _, ib := range in.InBuffers {
			if h := e.buffers.GetPtr(ib.Key); h != nil && h.hist.producer != nil {
				enqueue(*h.hist.producer)
			}
		}

		out := node.Outputs()
		for _, oi := range out.OutImages {
			if oi.Consumed == nil {
				continue
			}
			ce := e.images.GetPtr(*oi.Consumed)
			if ce == nil {
				continue
			}
			if ce.hist.producer != nil {
				enqueue(*ce.hist.producer)
			}
			for _, r := range ce.hist.readers {
				enqueue(r)
			}
		}
		for _, ob := range out.OutBuffers {
			if ob.Consumed == nil {
				continue
			}
			ce := e.buffers.GetPtr(*ob.Consumed)
			if ce == nil {
				continue
			}
			if ce.hist.producer != nil {
				enqueue(*ce.hist.producer)
			}
			for _, r := range ce.hist.readers {
				enqueue(r)
			}
		}
	}

	log := rlog.Named("graph.compiler")
	for _, ent := range e.nodes.All() {
		if !live[ent.Key.Index()] {
			log.Debug("discarding unreachable node", "label", ent.Val.label)
		}
	}
	return live
}

// addDependencyEdges derives and upserts every dependency edge that
// targets thisNode, per step 2 of Build.
func (e *Editor) addDependencyEdges(
	dg *depgraph.Graph[GraphNode, []BarrierDesc],
	nodeIdx map[uint32]int,
	thisKey GraphNode,
	thisIdx int,
	node Node,
) {
	in := node.Inputs()
	for _, ii := range in.InImages {
		h := e.images.GetPtr(ii.Key)
		if h == nil || h.hist.producer == nil {
			continue
		}
		key := ii.Key
		srcIdx := nodeIdx[h.hist.producer.Index()]
		bd := BarrierDesc{
			Image:        &key,
			SyncBefore:   h.hist.producerAccess.Stage,
			SyncAfter:    ii.Access.Stage,
			AccessBefore: h.hist.producerAccess.Access,
			AccessAfter:  ii.Access.Access,
			LayoutBefore: h.hist.producerAccess.Layout,
			LayoutAfter:  ii.Access.Layout,
		}
		appendEdge(dg, srcIdx, thisIdx, bd)
	}
	for _, ib := range in.InBuffers {
		h := e.buffers.GetPtr(ib.Key)
		if h == nil || h.hist.producer == nil {
			continue
		}
		key := ib.Key
		srcIdx := nodeIdx[h.hist.producer.Index()]
		bd := BarrierDesc{
			Buffer:       &key,
			SyncBefore:   h.hist.producerAccess.Stage,
			SyncAfter:    ib.Access.Stage,
			AccessBefore: h.hist.producerAccess.Access,
			AccessAfter:  ib.Access.Access,
		}
		appendEdge(dg, srcIdx, thisIdx, bd)
	}

	out := node.Outputs()
	for _, oi := range out.OutImages {
		if oi.Consumed == nil {
			continue
		}
		ce := e.images.GetPtr(*oi.Consumed)
		if ce == nil {
			continue
		}
		if len(ce.hist.readers) == 0 {
			if ce.hist.producer == nil {
				continue
			}
			srcIdx := nodeIdx[ce.hist.producer.Index()]
			bd := BarrierDesc{
				Image:        oi.Consumed,
				SyncBefore:   ce.hist.producerAccess.Stage,
				SyncAfter:    oi.Access.Stage,
				AccessBefore: ce.hist.producerAccess.Access,
				AccessAfter:  oi.Access.Access,
				LayoutBefore: ce.hist.producerAccess.Layout,
				LayoutAfter:  oi.Access.Layout,
			}
			appendEdge(dg, srcIdx, thisIdx, bd)
			continue
		}
		for i, r := range ce.hist.readers {
			ra := ce.hist.readerAccess[i]
			srcIdx := nodeIdx[r.Index()]
			bd := BarrierDesc{
				Image:        oi.Consumed,
				SyncBefore:   ra.Stage,
				SyncAfter:    oi.Access.Stage,
				LayoutBefore: ra.Layout,
				LayoutAfter:  oi.Access.Layout,
			}
			appendEdge(dg, srcIdx, thisIdx, bd)
		}
	}
	for _, ob := range out.OutBuffers {
		if ob.Consumed == nil {
			continue
		}
		ce := e.buffers.GetPtr(*ob.Consumed)
		if ce == nil {
			continue
		}
		if len(ce.hist.readers) == 0 {
			if ce.hist.producer == nil {
				continue
			}
			srcIdx := nodeIdx[ce.hist.producer.Index()]
			bd := BarrierDesc{
				Buffer:       ob.Consumed,
				SyncBefore:   ce.hist.producerAccess.Stage,
				SyncAfter:    ob.Access.Stage,
				AccessBefore: ce.hist.producerAccess.Access,
				AccessAfter:  ob.Access.Access,
			}
			appendEdge(dg, srcIdx, thisIdx, bd)
			continue
		}
		for i, r := range ce.hist.readers {
			ra := ce.hist.readerAccess[i]
			srcIdx := nodeIdx[r.Index()]
			bd := BarrierDesc{
				Buffer:     ob.Consumed,
				SyncBefore: ra.Stage,
				SyncAfter:  ob.Access.Stage,
			}
			appendEdge(dg, srcIdx, thisIdx, bd)
		}
	}
}

// appendEdge upserts bd onto the accumulated barrier slice for the edge
// src->dst, creating the edge if it does not exist yet. Accumulated
// barriers are never deduplicated or coalesced.
func appendEdge(dg *depgraph.Graph[GraphNode, []BarrierDesc], src, dst int, bd BarrierDesc) {
	p := dg.EdgeOrDefault(src, dst, func() []BarrierDesc { return nil })
	*p = append(*p, bd)
}
