package timeline

import (
	"fmt"
	"time"
)

type WindowKind int

const (
	WindowInitial WindowKind = iota
	WindowOlder
	WindowJump
)

func (k WindowKind) String() string {
	switch k {
	case WindowInitial:
		return "initial"
	case WindowOlder:
		return "older"
	case WindowJump:
		return "jump"
	default:
		return fmt.Sprintf("WindowKind(%d)", int(k))
	}
}

// Window is the day span requested from the source in one call.
type Window struct {
	Kind   WindowKind
	Anchor Day
	First  Day
	Last   Day
	Start  time.Time
	End    time.Time
}

func (w Window) Days(loc *time.Location) []Day {
	return DayRange(w.Start, w.End, loc)
}

func (w Window) String() string {
	return fmt.Sprintf("%s[%s..%s]", w.Kind, w.First, w.Last)
}

// anchoredWindow spans the span days ending with anchor, through the end of
// the anchor day. Initial and jump windows use this shape.
func anchoredWindow(kind WindowKind, anchor Day, span int, loc *time.Location) (Window, error) {
	first, err := anchor.AddDays(-(span - 1))
	if err != nil {
		return Window{Kind: kind, Anchor: anchor}, err
	}
	return Window{
		Kind:   kind,
		Anchor: anchor,
		First:  first,
		Last:   anchor,
		Start:  first.Start(loc),
		End:    anchor.End(loc),
	}, nil
}

// olderWindow spans the span days immediately before boundary, leaving no
// gap between it and the already-fetched coverage.
func olderWindow(boundary Day, span int, loc *time.Location) (Window, error) {
	first, err := boundary.AddDays(-span)
	if err != nil {
		return Window{Kind: WindowOlder, Anchor: boundary}, err
	}
	last, err := boundary.AddDays(-1)
	if err != nil {
		return Window{Kind: WindowOlder, Anchor: boundary}, err
	}
	return Window{
		Kind:   WindowOlder,
		Anchor: last,
		First:  first,
		Last:   last,
		Start:  first.Start(loc),
		End:    last.End(loc),
	}, nil
}
