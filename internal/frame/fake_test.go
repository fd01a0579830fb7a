package frame

import (
	"github.com/cockroachdb/errors"
)

// fakeGPU models a single in-order queue. Work only completes when the CPU
// waits on it, which is the slowest GPU the engine can face and so the one
// that exercises the waits hardest.
//
// Semaphore and fence ids are indices into the state slices. Binary semaphore
// rules are enforced: a semaphore may only be signaled while unsignaled, and
// may only be waited on while signaled (or pending signal).
type fakeGPU struct {
	fenceSignaled []bool
	semSignaled   []bool

	acquireOrder []int
	acquires     int
	// acquireErrs injects an error on the n-th acquire call.
	acquireErrs map[int]error
	presentErrs map[int]error
	submitErr   error

	submissions []*submission
	presents    []present
	calls       []string

	maxOutstanding int
	idle           bool
}

type submission struct {
	seq      int
	image    int
	wait     int
	signal   int
	fence    int
	complete bool
	// outstanding is the number of incomplete submissions right after this
	// one was enqueued, including itself.
	outstanding int
}

type present struct {
	image int
	wait  int
}

// newFakeGPU creates fences 0..frames-1 signaled and semaphores
// 0..2*frames-1 unsignaled. acquireOrder is cycled.
func newFakeGPU(frames int, acquireOrder []int) *fakeGPU {
	g := &fakeGPU{
		fenceSignaled: make([]bool, frames),
		semSignaled:   make([]bool, 2*frames),
		acquireOrder:  acquireOrder,
		acquireErrs:   map[int]error{},
		presentErrs:   map[int]error{},
	}
	for i := range g.fenceSignaled {
		g.fenceSignaled[i] = true
	}
	return g
}

func (g *fakeGPU) slots() []Slot[int, int] {
	slots := make([]Slot[int, int], len(g.fenceSignaled))
	for i := range slots {
		slots[i] = Slot[int, int]{
			ImageAvailable: 2 * i,
			RenderFinished: 2*i + 1,
			InFlight:       i,
		}
	}
	return slots
}

func (g *fakeGPU) completeNext() bool {
	for _, s := range g.submissions {
		if s.complete {
			continue
		}
		s.complete = true
		g.fenceSignaled[s.fence] = true
		return true
	}
	return false
}

func (g *fakeGPU) outstanding() int {
	n := 0
	for _, s := range g.submissions {
		if !s.complete {
			n++
		}
	}
	return n
}

func (g *fakeGPU) WaitForFence(fence int) error {
	g.calls = append(g.calls, "wait")
	for !g.fenceSignaled[fence] {
		if !g.completeNext() {
			return errors.Newf("deadlock: fence %d is unsignaled with no pending work", fence)
		}
	}
	return nil
}

func (g *fakeGPU) ResetFence(fence int) error {
	g.calls = append(g.calls, "reset")
	g.fenceSignaled[fence] = false
	return nil
}

func (g *fakeGPU) AcquireNextImage(signal int) (int, error) {
	g.calls = append(g.calls, "acquire")
	n := g.acquires
	g.acquires++
	if err, ok := g.acquireErrs[n]; ok {
		return 0, err
	}
	if g.semSignaled[signal] {
		return 0, errors.Newf("acquire would signal already signaled semaphore %d", signal)
	}
	g.semSignaled[signal] = true
	return g.acquireOrder[n%len(g.acquireOrder)], nil
}

func (g *fakeGPU) Submit(target int, wait int, signal int, fence int) error {
	g.calls = append(g.calls, "submit")
	if g.submitErr != nil {
		return g.submitErr
	}
	if !g.semSignaled[wait] {
		return errors.Newf("submit waits on unsignaled semaphore %d", wait)
	}
	if g.semSignaled[signal] {
		return errors.Newf("submit signals already signaled semaphore %d", signal)
	}
	if g.fenceSignaled[fence] {
		return errors.Newf("submit with signaled fence %d", fence)
	}
	g.semSignaled[wait] = false
	g.semSignaled[signal] = true

	s := &submission{
		seq:    len(g.submissions),
		image:  target,
		wait:   wait,
		signal: signal,
		fence:  fence,
	}
	g.submissions = append(g.submissions, s)
	s.outstanding = g.outstanding()
	if s.outstanding > g.maxOutstanding {
		g.maxOutstanding = s.outstanding
	}
	return nil
}

func (g *fakeGPU) Present(index int, wait int) error {
	g.calls = append(g.calls, "present")
	if !g.semSignaled[wait] {
		return errors.Newf("present waits on unsignaled semaphore %d", wait)
	}
	g.semSignaled[wait] = false
	g.presents = append(g.presents, present{image: index, wait: wait})
	return g.presentErrs[len(g.presents)-1]
}

func (g *fakeGPU) WaitIdle() error {
	g.calls = append(g.calls, "idle")
	for g.completeNext() {
	}
	g.idle = true
	return nil
}

// aliasTracker records every submission that was enqueued while an earlier
// submission to the same image had not yet completed.
type aliasTracker struct {
	*fakeGPU
	lastByImage map[int]*submission
	violations  []string
}

func newAliasTracker(g *fakeGPU) *aliasTracker {
	return &aliasTracker{fakeGPU: g, lastByImage: map[int]*submission{}}
}

func (a *aliasTracker) Submit(target int, wait int, signal int, fence int) error {
	if prev, ok := a.lastByImage[target]; ok && !prev.complete {
		a.violations = append(a.violations, errors.Newf("submission %d to image %d enqueued while submission %d is unfinished", len(a.submissions), target, prev.seq).Error())
	}
	err := a.fakeGPU.Submit(target, wait, signal, fence)
	if err != nil {
		return err
	}
	a.lastByImage[target] = a.submissions[len(a.submissions)-1]
	return nil
}
