// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestStatusQueueFIFO(t *testing.T) {
	var q StatusQueue
	q.Push(StatusEnabled)
	q.Push(StatusRunning)
	assert.Equal(t, []Status{StatusEnabled, StatusRunning}, q.Statuses())
	q.drop(1)
	assert.Equal(t, []Status{StatusRunning}, q.Statuses())
	assert.Equal(t, 1, q.Len())
	q.Clear()
	assert.Zero(t, q.Len())
	assert.Equal(t, 1, q.resets)
}

func TestStatusQueueDrop(t *testing.T) {
	var q StatusQueue
	q.Push(StatusEnabled)
	q.Push(StatusRunning)
	snapshot := q.Statuses()
	q.Push(StatusReady)

	q.drop(len(snapshot))
	assert.Equal(t, []Status{StatusReady}, q.Statuses())
	q.drop(5)
	assert.Zero(t, q.Len())
	assert.Zero(t, q.resets)
}

func TestTransitionPredicates(t *testing.T) {
	R, I, Y := StatusRunning, StatusInertia, StatusReady
	assert.True(t, isTransientReadyExcursion([]Status{R, Y, R}, 1))
	assert.True(t, isTransientReadyExcursion([]Status{I, Y, R}, 1))
	assert.False(t, isTransientReadyExcursion([]Status{R, Y}, 1), "needs a following status")
	assert.False(t, isTransientReadyExcursion([]Status{StatusEnabled, Y, R}, 1))
	assert.False(t, isTransientReadyExcursion([]Status{StatusAutoRunning, Y, R}, 1))

	assert.True(t, isTransientRunningDuringInertia([]Status{I, R, I}, 1))
	assert.True(t, isTransientRunningDuringInertia([]Status{I, R, Y}, 1))
	assert.False(t, isTransientRunningDuringInertia([]Status{R, R, Y}, 1))
	assert.False(t, isTransientRunningDuringInertia([]Status{I, R}, 1))

	run := []Status{StatusBuilding, StatusEnabled, R, Y, StatusDisabled, StatusEnabled}
	assert.True(t, isEnableTransitionRun(run, 1))
	run[0] = Y
	assert.False(t, isEnableTransitionRun(run, 1))
}

func TestCollapseTransitions(t *testing.T) {
	R, I, Y := StatusRunning, StatusInertia, StatusReady
	E, D, B := StatusEnabled, StatusDisabled, StatusBuilding
	for _, tc := range []struct {
		label string
		old   Status
		queue []Status
		in    collapseInput
		want  []Status
		drop  bool
		left  int
	}{
		{label: "no-op", old: Y, queue: []Status{R, I, Y}, want: []Status{R, I, Y}},
		{label: "ready excursion from old", old: R, queue: []Status{Y, R}, want: []Status{R}},
		{label: "ready excursion then complete", old: R, queue: []Status{Y, R, Y}, want: []Status{R, Y}},
		{label: "ready excursion between statuses", old: Y, queue: []Status{R, Y, I, Y}, want: []Status{R, I, Y}},
		{label: "running during inertia", old: I, queue: []Status{R, I, Y}, want: []Status{I, Y}},
		{label: "running ends inertia", old: R, queue: []Status{I, R, Y}, want: []Status{I, Y}},
		{
			label: "running during inertia with contact",
			old:   I, queue: []Status{R, I},
			in:   collapseInput{contactInInertia: true},
			want: []Status{R, I},
		},
		{
			label: "enable run",
			old:   B, queue: []Status{E, R, Y, D, E},
			in:   collapseInput{removedRunning: 1},
			want: []Status{E},
		},
		{
			label: "enable run without pending enable",
			old:   D, queue: []Status{E, R, Y, D, E},
			want: []Status{E, R, Y, D, E},
		},
		{
			label: "skipped completion",
			old:   Y, queue: []Status{R},
			in:   collapseInput{completedSkipped: true},
			want: []Status{R},
			drop: true,
		},
	} {
		t.Run(tc.label, func(t *testing.T) {
			res := collapseTransitions(tc.old, tc.queue, tc.in)
			if diff := cmp.Diff(tc.want, res.statuses); diff != "" {
				t.Errorf("statuses mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.drop, res.dropOld, "dropOld")
			assert.Equal(t, tc.left, res.removedRunning, "removedRunning")
			if len(tc.queue) > 0 {
				assert.Equal(t, tc.queue[len(tc.queue)-1], res.statuses[len(res.statuses)-1], "last status changed")
			}
		})
	}
}
