// SPDX-License-Identifier: Unlicense OR MIT

/*
Package manip coordinates an external direct manipulation engine with
the elements of a visual tree.

A Manager creates and tears down viewports: one per pair of a
manipulation container and the element it lets the user pan and zoom.
Pointer contacts are bound to viewports by walking up the tree from
the hit element. The engine runs on its own goroutine (or process) and
reports viewport status changes asynchronously through
OnViewportStatusChanged; those reports are only queued. Once per UI
frame, Tick drains the queues, absorbs the transitional statuses the
engine is known to emit spuriously, and tells the owning containers
about manipulation progress.

All methods except OnViewportStatusChanged and OnInteractionTypeChanged
must be called from the UI goroutine.

Container callbacks run application code and may re-enter the Manager
or remove elements from the tree. Viewports are therefore referred to
by ViewportID handles, which stop resolving once their viewport is
unregistered, and every callback is followed by a re-resolution.
*/
package manip
