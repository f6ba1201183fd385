// SPDX-License-Identifier: Unlicense OR MIT

package dmtest

import (
	"fmt"

	"gioui.org/manip"
	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// Sink receives engine notifications. *manip.Manager implements it.
type Sink interface {
	OnViewportStatusChanged(id manip.ViewportID, old, new manip.Status)
	OnInteractionTypeChanged(id manip.ViewportID, t manip.InteractionType)
}

// Call is a recorded Service call.
type Call struct {
	Op       string
	Viewport manip.ViewportID
	Arg      interface{}
}

// Factory creates a Service per container.
type Factory struct {
	Sink     Sink
	Services map[event.Tag]*Service
	// Err, if set, is returned by NewService.
	Err error
	// Configure, if set, runs on every new Service.
	Configure func(s *Service)
}

// Service is a manipulation engine session that records calls and
// keeps the minimal state tests need.
type Service struct {
	sink  Sink
	Calls []Call

	Transforms map[manip.ViewportID]f32.Transform
	InertiaEnd map[manip.ViewportID]f32.Transform
	Statuses   map[manip.ViewportID]manip.Status
	Chaining   map[manip.ViewportID]manip.Motion
	Registered map[manip.ViewportID]bool
	Contacts   map[manip.ViewportID][]pointer.ID
	Configs    map[manip.ViewportID][]manip.Configuration
	Active     map[manip.ViewportID]manip.Configuration
	AutoScroll map[manip.ViewportID]f32.Point
	Contents   map[manip.ContentID]manip.ViewportID

	CrossSlides        map[manip.CrossSlideID]CrossSlide
	CrossSlideContacts map[manip.CrossSlideID][]pointer.ID

	// RefuseContacts makes SetContact report a contact failure.
	RefuseContacts bool
	// RefuseCrossSlideContacts does the same for SetCrossSlideContact.
	RefuseCrossSlideContacts bool
	// RefuseConfigs makes ActivateViewportConfiguration refuse.
	RefuseConfigs bool
	// Fail maps operation names to the error they return.
	Fail map[string]error
}

// CrossSlide is the engine record of a cross-slide viewport.
type CrossSlide struct {
	Config, Parent manip.Configuration
}

func NewFactory() *Factory {
	return &Factory{Services: make(map[event.Tag]*Service)}
}

func (f *Factory) NewService(container event.Tag) (manip.Service, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	s := NewService(f.Sink)
	if f.Configure != nil {
		f.Configure(s)
	}
	f.Services[container] = s
	return s, nil
}

func NewService(sink Sink) *Service {
	return &Service{
		sink:               sink,
		Transforms:         make(map[manip.ViewportID]f32.Transform),
		InertiaEnd:         make(map[manip.ViewportID]f32.Transform),
		Statuses:           make(map[manip.ViewportID]manip.Status),
		Chaining:           make(map[manip.ViewportID]manip.Motion),
		Registered:         make(map[manip.ViewportID]bool),
		Contacts:           make(map[manip.ViewportID][]pointer.ID),
		Configs:            make(map[manip.ViewportID][]manip.Configuration),
		Active:             make(map[manip.ViewportID]manip.Configuration),
		AutoScroll:         make(map[manip.ViewportID]f32.Point),
		Contents:           make(map[manip.ContentID]manip.ViewportID),
		CrossSlides:        make(map[manip.CrossSlideID]CrossSlide),
		CrossSlideContacts: make(map[manip.CrossSlideID][]pointer.ID),
		Fail:               make(map[string]error),
	}
}

// Report makes the engine report statuses for id, in order.
func (s *Service) Report(id manip.ViewportID, statuses ...manip.Status) {
	for _, st := range statuses {
		old := s.Statuses[id]
		s.Statuses[id] = st
		s.sink.OnViewportStatusChanged(id, old, st)
	}
}

// Interact makes the engine report interaction types for id.
func (s *Service) Interact(id manip.ViewportID, types ...manip.InteractionType) {
	for _, t := range types {
		s.sink.OnInteractionTypeChanged(id, t)
	}
}

// Move sets the content transform of id to a translation by (x, y).
func (s *Service) Move(id manip.ViewportID, x, y float32) {
	t := f32.Identity()
	t.TranslationX, t.TranslationY = x, y
	s.Transforms[id] = t
}

// Count returns the number of calls to op.
func (s *Service) Count(op string) int {
	n := 0
	for _, c := range s.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsTo returns the calls to op.
func (s *Service) CallsTo(op string) []Call {
	var calls []Call
	for _, c := range s.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// Ops returns the names of the recorded calls, oldest first.
func (s *Service) Ops() []string {
	ops := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		ops[i] = c.Op
	}
	return ops
}

func (s *Service) record(op string, id manip.ViewportID, arg interface{}) error {
	s.Calls = append(s.Calls, Call{Op: op, Viewport: id, Arg: arg})
	if err := s.Fail[op]; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) EnsureManager(container event.Tag) error {
	return s.record("EnsureManager", manip.ViewportID{}, container)
}

func (s *Service) ActivateManager() error {
	return s.record("ActivateManager", manip.ViewportID{}, nil)
}

func (s *Service) DeactivateManager() error {
	return s.record("DeactivateManager", manip.ViewportID{}, nil)
}

func (s *Service) RegisterViewport(id manip.ViewportID) error {
	if err := s.record("RegisterViewport", id, nil); err != nil {
		return err
	}
	s.Registered[id] = true
	s.Statuses[id] = manip.StatusBuilding
	return nil
}

func (s *Service) UnregisterViewport(id manip.ViewportID) error {
	if err := s.record("UnregisterViewport", id, nil); err != nil {
		return err
	}
	delete(s.Registered, id)
	return nil
}

func (s *Service) AddViewportConfiguration(id manip.ViewportID, c manip.Configuration) error {
	if err := s.record("AddViewportConfiguration", id, c); err != nil {
		return err
	}
	s.Configs[id] = append(s.Configs[id], c)
	return nil
}

func (s *Service) RemoveViewportConfiguration(id manip.ViewportID, c manip.Configuration) error {
	if err := s.record("RemoveViewportConfiguration", id, c); err != nil {
		return err
	}
	cfgs := s.Configs[id]
	for i, x := range cfgs {
		if x == c {
			s.Configs[id] = append(cfgs[:i:i], cfgs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Service) ActivateViewportConfiguration(id manip.ViewportID, c manip.Configuration) (bool, error) {
	if err := s.record("ActivateViewportConfiguration", id, c); err != nil {
		return false, err
	}
	if s.RefuseConfigs {
		return false, nil
	}
	s.Active[id] = c
	return true, nil
}

func (s *Service) EnableViewport(id manip.ViewportID) error {
	return s.record("EnableViewport", id, nil)
}

func (s *Service) DisableViewport(id manip.ViewportID) error {
	return s.record("DisableViewport", id, nil)
}

func (s *Service) StopViewport(id manip.ViewportID) error {
	return s.record("StopViewport", id, nil)
}

func (s *Service) SetContact(id manip.ViewportID, pid pointer.ID) (bool, error) {
	if err := s.record("SetContact", id, pid); err != nil {
		return false, err
	}
	if s.RefuseContacts {
		return true, nil
	}
	s.Contacts[id] = append(s.Contacts[id], pid)
	return false, nil
}

func (s *Service) ReleaseContact(id manip.ViewportID, pid pointer.ID) error {
	if err := s.record("ReleaseContact", id, pid); err != nil {
		return err
	}
	pids := s.Contacts[id]
	for i, p := range pids {
		if p == pid {
			s.Contacts[id] = append(pids[:i:i], pids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Service) ReleaseAllContacts(id manip.ViewportID) error {
	if err := s.record("ReleaseAllContacts", id, nil); err != nil {
		return err
	}
	delete(s.Contacts, id)
	return nil
}

func (s *Service) ViewportStatus(id manip.ViewportID) (manip.Status, error) {
	return s.Statuses[id], s.record("ViewportStatus", id, nil)
}

func (s *Service) SetViewportBounds(id manip.ViewportID, r f32.Rectangle) error {
	return s.record("SetViewportBounds", id, r)
}

func (s *Service) SetContentBounds(id manip.ViewportID, r f32.Rectangle) error {
	return s.record("SetContentBounds", id, r)
}

func (s *Service) SetContentAlignment(id manip.ViewportID, a manip.Alignment) error {
	return s.record("SetContentAlignment", id, a)
}

func (s *Service) SetPrimaryContentZoomBoundaries(id manip.ViewportID, min, max float32) error {
	return s.record("SetPrimaryContentZoomBoundaries", id, [2]float32{min, max})
}

func (s *Service) SetPrimaryContentSnapPoints(id manip.ViewportID, m manip.Motion, p manip.SnapPoints) error {
	return s.record("SetPrimaryContentSnapPoints", id, m)
}

func (s *Service) SetViewportChaining(id manip.ViewportID, m manip.Motion) error {
	if err := s.record("SetViewportChaining", id, m); err != nil {
		return err
	}
	s.Chaining[id] = m
	return nil
}

func (s *Service) ChainedMotionTypes(id manip.ViewportID) (manip.Motion, error) {
	return s.Chaining[id], s.record("ChainedMotionTypes", id, nil)
}

func (s *Service) PrimaryContentTransform(id manip.ViewportID) (f32.Transform, error) {
	if err := s.record("PrimaryContentTransform", id, nil); err != nil {
		return f32.Transform{}, err
	}
	if t, ok := s.Transforms[id]; ok {
		return t, nil
	}
	return f32.Identity(), nil
}

func (s *Service) SecondaryContentTransform(id manip.ViewportID, c manip.ContentID) (f32.Transform, error) {
	if err := s.record("SecondaryContentTransform", id, c); err != nil {
		return f32.Transform{}, err
	}
	t, ok := s.Transforms[id]
	if !ok {
		return f32.Identity(), nil
	}
	return t, nil
}

func (s *Service) ContentInertiaEndTransform(id manip.ViewportID) (f32.Transform, bool, error) {
	if err := s.record("ContentInertiaEndTransform", id, nil); err != nil {
		return f32.Transform{}, false, err
	}
	t, ok := s.InertiaEnd[id]
	return t, ok, nil
}

func (s *Service) BringIntoViewport(id manip.ViewportID, r f32.Rectangle, animate bool) error {
	return s.record("BringIntoViewport", id, animate)
}

func (s *Service) SetPrimaryContentTransform(id manip.ViewportID, t f32.Transform) error {
	if err := s.record("SetPrimaryContentTransform", id, t); err != nil {
		return err
	}
	s.Transforms[id] = t
	return nil
}

func (s *Service) ActivateAutoScroll(id manip.ViewportID, m manip.Motion, velocity f32.Point) error {
	if err := s.record("ActivateAutoScroll", id, m); err != nil {
		return err
	}
	s.AutoScroll[id] = velocity
	return nil
}

func (s *Service) StopAutoScroll(id manip.ViewportID) error {
	if err := s.record("StopAutoScroll", id, nil); err != nil {
		return err
	}
	delete(s.AutoScroll, id)
	return nil
}

func (s *Service) AddSecondaryContent(id manip.ViewportID, c manip.ContentID, t manip.ContentType) error {
	if err := s.record("AddSecondaryContent", id, c); err != nil {
		return err
	}
	s.Contents[c] = id
	return nil
}

func (s *Service) RemoveSecondaryContent(id manip.ViewportID, c manip.ContentID) error {
	if err := s.record("RemoveSecondaryContent", id, c); err != nil {
		return err
	}
	delete(s.Contents, c)
	return nil
}

func (s *Service) RegisterCrossSlideViewport(id manip.CrossSlideID, c, parent manip.Configuration) error {
	if err := s.record("RegisterCrossSlideViewport", manip.ViewportID{}, id); err != nil {
		return err
	}
	s.CrossSlides[id] = CrossSlide{Config: c, Parent: parent}
	return nil
}

func (s *Service) UnregisterCrossSlideViewport(id manip.CrossSlideID) error {
	if err := s.record("UnregisterCrossSlideViewport", manip.ViewportID{}, id); err != nil {
		return err
	}
	delete(s.CrossSlides, id)
	return nil
}

func (s *Service) SetCrossSlideContact(id manip.CrossSlideID, pid pointer.ID) (bool, error) {
	if err := s.record("SetCrossSlideContact", manip.ViewportID{}, id); err != nil {
		return false, err
	}
	if s.RefuseCrossSlideContacts {
		return true, nil
	}
	s.CrossSlideContacts[id] = append(s.CrossSlideContacts[id], pid)
	return false, nil
}

func (s *Service) ReleaseCrossSlideContacts(id manip.CrossSlideID) error {
	if err := s.record("ReleaseCrossSlideContacts", manip.ViewportID{}, id); err != nil {
		return err
	}
	delete(s.CrossSlideContacts, id)
	return nil
}
