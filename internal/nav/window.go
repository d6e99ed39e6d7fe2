package nav

import "strconv"

// ControlKind discriminates entries of a pagination control row.
type ControlKind int

const (
	ControlPage ControlKind = iota
	ControlEllipsis
	ControlPrev
	ControlNext
)

// Control is one button of the page-control row. Page is the navigation
// target; for ControlPage it is also the displayed number.
type Control struct {
	Kind     ControlKind
	Page     int
	Selected bool
}

const windowFullThreshold = 5

// Window computes the visible page controls for the given position. The row
// keeps a constant visual width: past five pages the middle collapses into
// ellipsis jumps while the edges stay reachable. Prev/next arrows are placed
// at the outer edges and only when movement in that direction is possible.
func Window(current, total int) []Control {
	if total < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	var controls []Control
	page := func(n int) {
		controls = append(controls, Control{Kind: ControlPage, Page: n, Selected: n == current})
	}
	ellipsis := func(n int) {
		controls = append(controls, Control{Kind: ControlEllipsis, Page: n})
	}

	switch {
	case total <= windowFullThreshold:
		for n := 1; n <= total; n++ {
			page(n)
		}
	case current <= 3:
		page(1)
		page(2)
		page(3)
		ellipsis(clamp(total/2, 4, total-2))
		page(total - 1)
		page(total)
	case current >= total-2:
		page(1)
		ellipsis(clamp(total/2, 2, total-3))
		page(total - 2)
		page(total - 1)
		page(total)
	default:
		page(1)
		ellipsis(current - 2)
		page(current)
		ellipsis(current + 2)
		page(total)
	}

	if current > 1 {
		controls = append([]Control{{Kind: ControlPrev, Page: current - 1}}, controls...)
	}
	if current < total {
		controls = append(controls, Control{Kind: ControlNext, Page: current + 1})
	}
	return controls
}

// Token builds the navigation token a control dispatches for the given
// content type, preserving any list filter carried in extra.
func (c Control) Token(content, extra string) Token {
	return Token{Content: content, Action: ActionNav, Page: c.Page, Extra: extra}
}

// Label renders the visual text of a control.
func (c Control) Label() string {
	switch c.Kind {
	case ControlEllipsis:
		return "..."
	case ControlPrev:
		return "«"
	case ControlNext:
		return "»"
	}
	if c.Selected {
		return "· " + strconv.Itoa(c.Page) + " ·"
	}
	return strconv.Itoa(c.Page)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
