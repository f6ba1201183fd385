// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/manip/io/event"
)

func TestRegistryStaleHandles(t *testing.T) {
	var r registry
	a := r.add(newViewport("c", "a", nil))
	b := r.add(newViewport("c", "b", nil))
	require.NotNil(t, r.get(a))
	assert.Equal(t, []ViewportID{a, b}, r.ids())

	r.remove(a)
	assert.Nil(t, r.get(a))
	c := r.add(newViewport("c", "c", nil))
	assert.Equal(t, a.index, c.index, "slot reused")
	assert.Nil(t, r.get(a), "stale handle resolves after reuse")
	assert.Equal(t, "c", r.get(c).element)
	assert.Equal(t, []ViewportID{b, c}, r.ids())

	r.remove(a)
	assert.NotNil(t, r.get(c), "removing a stale handle must not touch the slot")
	assert.Len(t, r.ids(), 2)
	assert.Nil(t, r.get(ViewportID{}))
	assert.False(t, ViewportID{}.Valid())
}

func TestRegistryFind(t *testing.T) {
	var r registry
	vp := newViewport("c", "e", nil)
	r.add(vp)
	assert.Equal(t, vp, r.find("c", "e"))
	assert.Nil(t, r.find("c", "other"))

	vp.needsUnregistration = true
	assert.Nil(t, r.find("c", "e"))
	fresh := newViewport("c", "e", nil)
	r.add(fresh)
	assert.Equal(t, fresh, r.find("c", "e"))
}

func TestContactBook(t *testing.T) {
	var b contactBook
	id := ViewportID{index: 0, gen: 1}
	b.track(1, "leaf")
	b.bind(1, id)
	b.bind(1, id)
	b.setInteraction(2, "button")
	assert.Equal(t, []ViewportID{id}, b.viewportsFor(1))
	assert.Equal(t, []int{1, 2}, func() []int {
		var pids []int
		for _, p := range b.pointers() {
			pids = append(pids, int(p))
		}
		return pids
	}())

	b.dropElements(func(e event.Tag) bool { return e == "button" })
	_, ok := b.interaction[2]
	assert.False(t, ok)

	b.unbind(1, id)
	assert.Empty(t, b.viewportsFor(1))
	b.forget(1)
	assert.Empty(t, b.pointers())
}
