// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"fmt"

	"golang.org/x/exp/slices"

	"gioui.org/manip/io/event"
)

// ViewportID is a handle to a registered viewport. A handle stops
// resolving once its viewport is unregistered, even if the slot is
// later reused. The zero ViewportID never resolves.
type ViewportID struct {
	index uint32
	gen   uint32
}

// CrossSlideID identifies a cross-slide viewport.
type CrossSlideID uint32

// ContentID identifies a secondary content handle in the engine.
type ContentID uint32

// registry owns the viewports of a Manager.
type registry struct {
	slots []slot
	free  []uint32
	// order lists live handles in registration order.
	order []ViewportID
}

type slot struct {
	gen uint32
	vp  *Viewport
}

func (id ViewportID) Valid() bool {
	return id.gen != 0
}

func (id ViewportID) String() string {
	if !id.Valid() {
		return "vp(invalid)"
	}
	return fmt.Sprintf("vp(%d.%d)", id.index, id.gen)
}

func (r *registry) add(vp *Viewport) ViewportID {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	s := &r.slots[idx]
	s.gen++
	s.vp = vp
	id := ViewportID{index: idx, gen: s.gen}
	vp.id = id
	r.order = append(r.order, id)
	return id
}

// get resolves id, or returns nil if id is stale.
func (r *registry) get(id ViewportID) *Viewport {
	if !id.Valid() || int(id.index) >= len(r.slots) {
		return nil
	}
	s := r.slots[id.index]
	if s.gen != id.gen {
		return nil
	}
	return s.vp
}

func (r *registry) remove(id ViewportID) {
	if r.get(id) == nil {
		return
	}
	s := &r.slots[id.index]
	s.vp = nil
	// Bump the generation so outstanding handles stop resolving.
	s.gen++
	r.free = append(r.free, id.index)
	if i := slices.Index(r.order, id); i != -1 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// ids returns a snapshot of the live handles. Callers iterate the
// snapshot and re-resolve each handle, so viewports may be added and
// removed during the iteration.
func (r *registry) ids() []ViewportID {
	return slices.Clone(r.order)
}

// find returns the viewport for the container and element pair that
// is not pending unregistration.
func (r *registry) find(container, element event.Tag) *Viewport {
	for _, id := range r.order {
		vp := r.get(id)
		if vp.container == container && vp.element == element && !vp.needsUnregistration && !vp.unregistered {
			return vp
		}
	}
	return nil
}
