// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"gioui.org/manip/io/event"
)

// serviceRegistry binds manipulation containers to engine sessions,
// one session per container.
type serviceRegistry struct {
	factory ServiceFactory
	byTag   map[event.Tag]Service
	// order lists containers in the order their sessions were created.
	order []event.Tag
}

// ensure returns the session for container, creating and activating
// it if needed.
func (r *serviceRegistry) ensure(container event.Tag) (Service, error) {
	if svc, ok := r.byTag[container]; ok {
		return svc, nil
	}
	if r.factory == nil {
		return nil, ErrNoService
	}
	svc, err := r.factory.NewService(container)
	if err != nil {
		return nil, fmt.Errorf("manip: new service: %w", err)
	}
	if svc == nil {
		return nil, ErrNoService
	}
	if err := svc.EnsureManager(container); err != nil {
		return nil, fmt.Errorf("manip: ensure manager: %w", err)
	}
	if err := svc.ActivateManager(); err != nil {
		return nil, fmt.Errorf("manip: activate manager: %w", err)
	}
	if r.byTag == nil {
		r.byTag = make(map[event.Tag]Service)
	}
	r.byTag[container] = svc
	r.order = append(r.order, container)
	return svc, nil
}

// release deactivates and forgets the session of container.
func (r *serviceRegistry) release(container event.Tag) error {
	svc, ok := r.byTag[container]
	if !ok {
		return nil
	}
	delete(r.byTag, container)
	if i := slices.Index(r.order, container); i != -1 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	if err := svc.DeactivateManager(); err != nil {
		return fmt.Errorf("manip: deactivate manager: %w", err)
	}
	return nil
}

func (r *serviceRegistry) containers() []event.Tag {
	return slices.Clone(r.order)
}

var (
	// ErrNoService is returned when no engine session could be created
	// for a container.
	ErrNoService = errors.New("manip: no manipulation service")
	// ErrUnregistered is returned for operations on unregistered viewports.
	ErrUnregistered = errors.New("manip: viewport is unregistered")
)
