// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// contactBook tracks which elements and viewports each pointer is
// associated with.
type contactBook struct {
	// tracked is the element hit by the pointer when it went down.
	tracked map[pointer.ID]event.Tag
	// interaction is the element the interaction engine tracks the
	// pointer for.
	interaction map[pointer.ID]event.Tag
	viewports   map[pointer.ID][]ViewportID
}

func (b *contactBook) init() {
	if b.tracked == nil {
		b.tracked = make(map[pointer.ID]event.Tag)
		b.interaction = make(map[pointer.ID]event.Tag)
		b.viewports = make(map[pointer.ID][]ViewportID)
	}
}

func (b *contactBook) track(pid pointer.ID, e event.Tag) {
	b.init()
	b.tracked[pid] = e
}

func (b *contactBook) setInteraction(pid pointer.ID, e event.Tag) {
	b.init()
	if e == nil {
		delete(b.interaction, pid)
		return
	}
	b.interaction[pid] = e
}

func (b *contactBook) bind(pid pointer.ID, id ViewportID) {
	b.init()
	if !slices.Contains(b.viewports[pid], id) {
		b.viewports[pid] = append(b.viewports[pid], id)
	}
}

func (b *contactBook) unbind(pid pointer.ID, id ViewportID) {
	ids := b.viewports[pid]
	if i := slices.Index(ids, id); i != -1 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(b.viewports, pid)
	} else {
		b.viewports[pid] = ids
	}
}

// viewportsFor returns a snapshot of the viewports pid is bound to.
func (b *contactBook) viewportsFor(pid pointer.ID) []ViewportID {
	return slices.Clone(b.viewports[pid])
}

// forget drops every association of pid.
func (b *contactBook) forget(pid pointer.ID) {
	delete(b.tracked, pid)
	delete(b.interaction, pid)
	delete(b.viewports, pid)
}

// pointers returns the pointers with any association, in ascending order.
func (b *contactBook) pointers() []pointer.ID {
	set := make(map[pointer.ID]struct{})
	for _, m := range []map[pointer.ID]event.Tag{b.tracked, b.interaction} {
		for _, pid := range maps.Keys(m) {
			set[pid] = struct{}{}
		}
	}
	for _, pid := range maps.Keys(b.viewports) {
		set[pid] = struct{}{}
	}
	pids := maps.Keys(set)
	slices.Sort(pids)
	return pids
}

// dropElements forgets the element associations for which drop
// returns true.
func (b *contactBook) dropElements(drop func(e event.Tag) bool) {
	for _, pid := range b.pointers() {
		if e, ok := b.tracked[pid]; ok && drop(e) {
			delete(b.tracked, pid)
		}
		if e, ok := b.interaction[pid]; ok && drop(e) {
			delete(b.interaction, pid)
		}
	}
}
