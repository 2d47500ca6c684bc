package nav

import (
	"fmt"
	"sync"
)

// Entry is a single screen on the navigation stack together with the
// parameters it was opened with.
type Entry struct {
	Target string
	Params any
}

// Stack is a registered-target navigation stack with focus subscription.
// All methods are safe for concurrent use. Focus callbacks run synchronously
// on the mutating goroutine, after the mutation is visible, and outside the
// stack's lock.
type Stack struct {
	mu      sync.Mutex
	targets map[string]struct{}
	entries []Entry
	focus   map[string][]func()
}

// NewStack creates a stack rooted at the given screen. The root target is
// registered implicitly.
func NewStack(root string, params any) *Stack {
	s := &Stack{
		targets: map[string]struct{}{root: {}},
		entries: []Entry{{Target: root, Params: params}},
		focus:   map[string][]func(){},
	}
	return s
}

// Register adds navigable targets. Navigating to an unregistered target
// fails, mirroring an unknown-route error in the host navigation system.
func (s *Stack) Register(targets ...string) *Stack {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range targets {
		s.targets[t] = struct{}{}
	}
	return s
}

// OnFocus subscribes fn to focus gains for target: fn runs every time
// target becomes the top of the stack after a mutation.
func (s *Stack) OnFocus(target string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus[target] = append(s.focus[target], fn)
}

// Navigate pushes target onto the stack, keeping the origin screen beneath
// it. The destination gains focus.
func (s *Stack) Navigate(target string, params any) error {
	s.mu.Lock()
	if _, ok := s.targets[target]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("nav: target %q not registered", target)
	}
	s.entries = append(s.entries, Entry{Target: target, Params: params})
	callbacks := s.focusCallbacksLocked(target)
	s.mu.Unlock()

	runAll(callbacks)
	return nil
}

// Replace swaps the current top of the stack for target, so the replaced
// screen cannot be returned to with GoBack. The destination gains focus.
func (s *Stack) Replace(target string, params any) error {
	s.mu.Lock()
	if _, ok := s.targets[target]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("nav: target %q not registered", target)
	}
	s.entries[len(s.entries)-1] = Entry{Target: target, Params: params}
	callbacks := s.focusCallbacksLocked(target)
	s.mu.Unlock()

	runAll(callbacks)
	return nil
}

// GoBack pops the current screen. The revealed screen gains focus. Popping
// the root is an error; callers are expected to check CanGoBack first.
func (s *Stack) GoBack() error {
	s.mu.Lock()
	if len(s.entries) <= 1 {
		s.mu.Unlock()
		return fmt.Errorf("nav: cannot go back from the root screen")
	}
	s.entries = s.entries[:len(s.entries)-1]
	revealed := s.entries[len(s.entries)-1].Target
	callbacks := s.focusCallbacksLocked(revealed)
	s.mu.Unlock()

	runAll(callbacks)
	return nil
}

// CanGoBack reports whether a screen exists beneath the current top.
func (s *Stack) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) > 1
}

// Current returns the entry at the top of the stack.
func (s *Stack) Current() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[len(s.entries)-1]
}

// Depth returns the number of screens on the stack.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Stack) focusCallbacksLocked(target string) []func() {
	subs := s.focus[target]
	if len(subs) == 0 {
		return nil
	}
	out := make([]func(), len(subs))
	copy(out, subs)
	return out
}

func runAll(callbacks []func()) {
	for _, fn := range callbacks {
		fn()
	}
}
