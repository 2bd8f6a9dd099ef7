// Copyright © 2024 The BPLint authors

package directive

import (
	"slices"
	"sort"

	"github.com/luthersystems/bplint/parser/token"
)

// Frame holds the directives encountered directly within one scope, in the
// order they were encountered. A Frame is never modified once it is part of
// a State; adding a directive replaces the top frame with an extended copy.
type Frame struct {
	directives []Directive
}

// Len returns the number of directives recorded in the frame.
func (f *Frame) Len() int {
	return len(f.directives)
}

// ArgLists returns the argument lists of the directives named name, one list
// per directive.
func (f *Frame) ArgLists(name string) [][]string {
	var lists [][]string
	for _, d := range f.directives {
		if d.Name == name {
			lists = append(lists, slices.Clone(d.Args))
		}
	}
	return lists
}

// with returns a copy of f extended with d.
func (f *Frame) with(d Directive) *Frame {
	ds := make([]Directive, len(f.directives), len(f.directives)+1)
	copy(ds, f.directives)
	return &Frame{directives: append(ds, d)}
}

// State is an ordered sequence of frames. The first frame is the document
// root and the last is the innermost open scope.
type State struct {
	frames []*Frame
}

// Depth returns the number of frames, including the root.
func (s State) Depth() int {
	return len(s.frames)
}

// Top returns the innermost frame.
func (s State) Top() *Frame {
	return s.frames[len(s.frames)-1]
}

// Args returns the arguments of every directive named name, outermost scope
// first, flattened into a single list.
func (s State) Args(name string) []string {
	args := []string{}
	for _, list := range s.ArgLists(name) {
		args = append(args, list...)
	}
	return args
}

// ArgLists returns the argument lists of every directive named name,
// outermost scope first, one list per directive.
func (s State) ArgLists(name string) [][]string {
	lists := [][]string{}
	for _, f := range s.frames {
		lists = append(lists, f.ArgLists(name)...)
	}
	return lists
}

// Directives returns the directives in effect whose name is one of names, in
// encounter order. With no names every directive in effect is returned.
func (s State) Directives(names ...string) []Directive {
	ds := []Directive{}
	for _, f := range s.frames {
		for _, d := range f.directives {
			if len(names) == 0 || slices.Contains(names, d.Name) {
				ds = append(ds, d.clone())
			}
		}
	}
	return ds
}

// ArgsByFrame returns, for each frame from the root inward, a mapping of
// directive name to the argument lists collected in that frame.
func (s State) ArgsByFrame() []map[string][][]string {
	out := make([]map[string][][]string, len(s.frames))
	for i, f := range s.frames {
		m := make(map[string][][]string)
		for _, d := range f.directives {
			m[d.Name] = append(m[d.Name], slices.Clone(d.Args))
		}
		out[i] = m
	}
	return out
}

func (s State) copy() State {
	return State{frames: slices.Clone(s.frames)}
}

// Snapshot is the directive state recorded at a location.
type Snapshot struct {
	Location token.Location
	State
}

// Events is implemented by event sources a Stack can follow.
type Events interface {
	OnDirective(func(Directive))
	OnEnterScope(func(token.Location))
	OnLeaveScope(func(token.Location))
}

// Stack tracks the directives in effect while a document is scanned once,
// front to back. After every change it records a Snapshot so the state at
// any visited location can be queried later with SnapshotAt.
//
// A Stack is not safe for concurrent use while it is being built. Once the
// scan has finished it is only read and may be shared.
type Stack struct {
	State
	timeline []Snapshot
}

// NewStack returns a stack holding only the empty root frame. Its timeline
// starts with a snapshot of that state at the start of the document.
func NewStack() *Stack {
	s := &Stack{State: State{frames: []*Frame{{}}}}
	s.record(token.Origin())
	return s
}

// ListenTo subscribes the stack to the scope and directive events of src.
// It must be called before src begins emitting.
func (s *Stack) ListenTo(src Events) {
	src.OnDirective(s.OnDirective)
	src.OnEnterScope(s.OnEnterScope)
	src.OnLeaveScope(s.OnLeaveScope)
}

// OnDirective adds d to the innermost scope and records a snapshot at the
// directive's location.
func (s *Stack) OnDirective(d Directive) {
	top := len(s.frames) - 1
	s.frames[top] = s.frames[top].with(d.clone())
	s.record(d.Location)
}

// OnEnterScope opens a new, empty scope. Entering a scope does not change
// which directives are in effect so no snapshot is recorded.
func (s *Stack) OnEnterScope(token.Location) {
	s.frames = append(s.frames, &Frame{})
}

// OnLeaveScope closes the innermost scope and records a snapshot at loc.
// Closing the root scope is a programming error and panics.
func (s *Stack) OnLeaveScope(loc token.Location) {
	if len(s.frames) <= 1 {
		panic("directive: leave scope at " + loc.String() + " without a matching enter")
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	s.record(loc)
}

func (s *Stack) record(loc token.Location) {
	s.timeline = append(s.timeline, Snapshot{Location: loc, State: s.State.copy()})
}

// Timeline returns the recorded snapshots in recording order.
func (s *Stack) Timeline() []Snapshot {
	return slices.Clone(s.timeline)
}

// SnapshotAt returns the most recent snapshot whose location is not after
// loc. Snapshots sharing a position are ordered by when they were recorded,
// so the last of them is returned.
func (s *Stack) SnapshotAt(loc token.Location) (Snapshot, bool) {
	i := sort.Search(len(s.timeline), func(i int) bool {
		return loc.Before(s.timeline[i].Location)
	})
	if i == 0 {
		return Snapshot{}, false
	}
	return s.timeline[i-1], true
}
