// SPDX-License-Identifier: Unlicense OR MIT

// Package dmtest provides recording fakes of the collaborators of a
// manipulation Manager.
package dmtest

import (
	"gioui.org/manip"
	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
)

// Element is a node of a Tree. Its fields may be changed between
// calls into the Manager.
type Element struct {
	Name      string
	Mode      manip.Mode
	Draggable bool
	// Bounds is the hit area, in window coordinates.
	Bounds              f32.Rectangle
	RequiresComposition bool
	// HitTestVisible elements are returned by Tree.HitTest.
	HitTestVisible bool

	container *Container
	parent    *Element
	children  []*Element
}

// Tree is a visual tree of Elements.
type Tree struct {
	Root *Element
	live map[*Element]bool
}

func NewTree() *Tree {
	root := &Element{Name: "root", Mode: manip.ModeSystem}
	return &Tree{
		Root: root,
		live: map[*Element]bool{root: true},
	}
}

func (e *Element) String() string {
	return e.Name
}

// Container returns the container callbacks of e, or nil.
func (e *Element) Container() *Container {
	return e.container
}

// Add adds a child element with the System manipulation mode.
func (t *Tree) Add(parent *Element, name string) *Element {
	e := &Element{
		Name:           name,
		Mode:           manip.ModeSystem,
		HitTestVisible: true,
		parent:         parent,
	}
	parent.children = append(parent.children, e)
	t.live[e] = true
	return e
}

// AddContainer adds a manipulation container.
func (t *Tree) AddContainer(parent *Element, name string) (*Element, *Container) {
	e := t.Add(parent, name)
	e.container = NewContainer()
	return e, e.container
}

// Remove detaches e and its descendants from the tree.
func (t *Tree) Remove(e *Element) {
	if p := e.parent; p != nil {
		for i, c := range p.children {
			if c == e {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	t.kill(e)
}

func (t *Tree) kill(e *Element) {
	delete(t.live, e)
	for _, c := range e.children {
		t.kill(c)
	}
}

func (t *Tree) Parent(tag event.Tag) event.Tag {
	e, ok := tag.(*Element)
	if !ok || e.parent == nil {
		return nil
	}
	return e.parent
}

func (t *Tree) Live(tag event.Tag) bool {
	e, ok := tag.(*Element)
	return ok && t.live[e]
}

func (t *Tree) Container(tag event.Tag) manip.Container {
	e, ok := tag.(*Element)
	if !ok || e.container == nil {
		return nil
	}
	return e.container
}

func (t *Tree) ManipulationMode(tag event.Tag) manip.Mode {
	if e, ok := tag.(*Element); ok {
		return e.Mode
	}
	return manip.ModeNone
}

func (t *Tree) Draggable(tag event.Tag) bool {
	e, ok := tag.(*Element)
	return ok && e.Draggable
}

func (t *Tree) SetRequiresComposition(tag event.Tag, requires bool) {
	if e, ok := tag.(*Element); ok {
		e.RequiresComposition = requires
	}
}

// HitTest returns the topmost live element whose bounds contain p.
// Later siblings are above earlier ones.
func (t *Tree) HitTest(p f32.Point) event.Tag {
	if e := t.hit(t.Root, p); e != nil {
		return e
	}
	return nil
}

func (t *Tree) hit(e *Element, p f32.Point) *Element {
	for i := len(e.children) - 1; i >= 0; i-- {
		if h := t.hit(e.children[i], p); h != nil {
			return h
		}
	}
	if e.HitTestVisible && p.In(e.Bounds) {
		return e
	}
	return nil
}
