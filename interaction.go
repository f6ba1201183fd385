// SPDX-License-Identifier: Unlicense OR MIT

package manip

type interactionPhase uint8

const (
	// preProcessing runs before statuses, for Begin and Manipulation.
	preProcessing interactionPhase = iota
	// postProcessing runs after statuses, for End.
	postProcessing
)

// processInteractions drains the leading interaction notifications of
// viewport id that belong to phase.
func (m *Manager) processInteractions(id ViewportID, phase interactionPhase) {
	for {
		vp := m.viewports.get(id)
		if vp == nil || len(vp.interactions) == 0 {
			return
		}
		t := vp.interactions[0]
		if (t == InteractionEnd) != (phase == postProcessing) {
			if phase == postProcessing {
				// Begin after End; wait for the next frame.
				m.requestFrame()
			}
			return
		}
		vp.interactions = vp.interactions[1:]
		m.trace("interaction", "viewport", id, "type", t)
		switch t {
		case InteractionBegin:
			vp.touchInteractionStartProcessed = true
			vp.touchInteractionEndExpected = true
			m.notifyState(id, InteractionStarted)
		case InteractionManipulation:
			// The manipulation completion ends the interaction.
			vp.touchInteractionEndExpected = false
		case InteractionEnd:
			vp.touchInteractionStartProcessed = false
			if vp.touchInteractionEndExpected {
				vp.touchInteractionEndExpected = false
				m.notifyState(id, InteractionEnded)
			}
		}
	}
}
