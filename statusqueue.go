// SPDX-License-Identifier: Unlicense OR MIT

package manip

import "golang.org/x/exp/slices"

// StatusQueue holds the engine statuses reported for a viewport since
// the last reconciliation pass, oldest first.
type StatusQueue struct {
	statuses []Status
	// resets counts the calls to Clear.
	resets int
}

// collapseInput is the viewport state the collapsing rules depend on.
type collapseInput struct {
	// contactInInertia is set if a contact was bound to the viewport
	// while it was in inertia.
	contactInInertia bool
	// removedRunning counts the idempotent enable calls whose
	// transitional statuses have not been seen yet.
	removedRunning int
	// completedSkipped is set if the completion for the viewport's
	// old Ready status was skipped.
	completedSkipped bool
}

// collapseResult is the outcome of collapseTransitions.
type collapseResult struct {
	statuses []Status
	// dropOld is set if the previous Ready status is discarded as well,
	// so that processing continues from the last active status.
	dropOld        bool
	removedRunning int
	// Counts of statuses removed by each rule, for tracing.
	readyExcursions, inertiaRunnings, enableRuns int
}

func (q *StatusQueue) Push(s Status) {
	q.statuses = append(q.statuses, s)
}

func (q *StatusQueue) Len() int {
	return len(q.statuses)
}

// Statuses returns a copy of the queued statuses.
func (q *StatusQueue) Statuses() []Status {
	return slices.Clone(q.statuses)
}

func (q *StatusQueue) Clear() {
	q.statuses = q.statuses[:0]
	q.resets++
}

// drop removes the n oldest statuses.
func (q *StatusQueue) drop(n int) {
	q.statuses = slices.Delete(q.statuses, 0, min(n, len(q.statuses)))
}

// isTransientReadyExcursion reports whether seq[i] is a Ready status
// sandwiched between two active statuses. The engine briefly reports
// Ready when one interaction hands over to the next; honoring it would
// complete and immediately restart the manipulation.
func isTransientReadyExcursion(seq []Status, i int) bool {
	if i < 1 || i+1 >= len(seq) || seq[i] != StatusReady {
		return false
	}
	before, after := seq[i-1], seq[i+1]
	if before == StatusAutoRunning || after == StatusAutoRunning {
		return false
	}
	return before.Active() && after.Active()
}

// isTransientRunningDuringInertia reports whether seq[i] is a Running
// status reported in the middle of inertia, followed by more inertia
// or by the end of the manipulation. Callers must only honor it if no
// contact was set while the viewport was in inertia.
func isTransientRunningDuringInertia(seq []Status, i int) bool {
	if i < 1 || i+1 >= len(seq) || seq[i] != StatusRunning {
		return false
	}
	if seq[i-1] != StatusInertia {
		return false
	}
	return seq[i+1] == StatusInertia || seq[i+1] == StatusReady
}

// isEnableTransitionRun reports whether the Enabled status at seq[i],
// entered from Building or Disabled, is followed by the four status run
// Running, Ready, Disabled, Enabled that the engine emits when an
// already enabled viewport is enabled again.
func isEnableTransitionRun(seq []Status, i int) bool {
	if i < 1 || i+4 >= len(seq) || seq[i] != StatusEnabled {
		return false
	}
	if prev := seq[i-1]; prev != StatusBuilding && prev != StatusDisabled {
		return false
	}
	return seq[i+1] == StatusRunning &&
		seq[i+2] == StatusReady &&
		seq[i+3] == StatusDisabled &&
		seq[i+4] == StatusEnabled
}

// collapseTransitions removes the spurious statuses from queue, given
// the last processed status old. The last status of queue is never
// removed or changed.
func collapseTransitions(old Status, queue []Status, in collapseInput) collapseResult {
	seq := make([]Status, 0, len(queue)+1)
	seq = append(seq, old)
	seq = append(seq, queue...)
	res := collapseResult{removedRunning: in.removedRunning}

	for i := 1; res.removedRunning > 0 && i+4 < len(seq); i++ {
		if isEnableTransitionRun(seq, i) {
			// Keep seq[i]; it has the value of the final Enabled.
			seq = slices.Delete(seq, i+1, i+5)
			res.removedRunning--
			res.enableRuns++
		}
	}
	for i := 1; i+1 < len(seq); {
		if isTransientReadyExcursion(seq, i) {
			seq = slices.Delete(seq, i, i+1)
			res.readyExcursions++
			continue
		}
		i++
	}
	if !in.contactInInertia {
		for i := 1; i+1 < len(seq); {
			if isTransientRunningDuringInertia(seq, i) {
				seq = slices.Delete(seq, i, i+1)
				res.inertiaRunnings++
				continue
			}
			i++
		}
	}
	if in.completedSkipped && old == StatusReady && len(seq) > 1 && seq[1].Active() && seq[1] != StatusAutoRunning {
		res.dropOld = true
	}
	res.statuses = seq[1:]
	return res
}
