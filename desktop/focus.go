package desktop

import "github.com/kungfusheep/tvwm/input"

// FocusManager cycles focus between a desktop's FocusableWindows and
// dispatches input to whichever one currently holds it. Dispatch is
// window-granularity only; per-field text-input routing is a widget
// concern layered on top, out of scope here.
type FocusManager struct {
	windows  []FocusableWindow
	current  int
	onChange func(prev, next FocusableWindow)
}

// NewFocusManager returns an empty focus manager.
func NewFocusManager() *FocusManager {
	return &FocusManager{current: -1}
}

// Register adds w to the focus cycle. The first registered window
// becomes focused automatically.
func (f *FocusManager) Register(w FocusableWindow) {
	f.windows = append(f.windows, w)
	if f.current == -1 {
		f.current = 0
	}
}

// Unregister removes w from the focus cycle, if present.
func (f *FocusManager) Unregister(w FocusableWindow) {
	for i, existing := range f.windows {
		if existing == w {
			f.windows = append(f.windows[:i], f.windows[i+1:]...)
			if f.current >= len(f.windows) {
				f.current = len(f.windows) - 1
			}
			return
		}
	}
}

// OnChange installs a callback invoked whenever focus moves.
func (f *FocusManager) OnChange(fn func(prev, next FocusableWindow)) {
	f.onChange = fn
}

// Current returns the currently focused window, or nil if none are
// registered.
func (f *FocusManager) Current() FocusableWindow {
	if f.current < 0 || f.current >= len(f.windows) {
		return nil
	}
	return f.windows[f.current]
}

// Next moves focus to the next window in registration order, wrapping.
func (f *FocusManager) Next() { f.move(1) }

// Prev moves focus to the previous window in registration order,
// wrapping.
func (f *FocusManager) Prev() { f.move(-1) }

func (f *FocusManager) move(delta int) {
	if len(f.windows) == 0 {
		return
	}
	prev := f.Current()
	f.current = ((f.current+delta)%len(f.windows) + len(f.windows)) % len(f.windows)
	next := f.Current()
	if f.onChange != nil && prev != next {
		f.onChange(prev, next)
	}
}

// DispatchKey routes a key event to the focused window unless it is the
// reserved focus-cycling key (Tab / Shift+Tab), which this manager
// consumes itself.
func (f *FocusManager) DispatchKey(ev input.KeyEvent) bool {
	if ev.Key == input.KeyTab {
		if ev.Mods.Has(input.ModShift) {
			f.Prev()
		} else {
			f.Next()
		}
		return true
	}
	if cur := f.Current(); cur != nil {
		return cur.HandleKey(ev)
	}
	return false
}

// DispatchMouse routes a mouse event to the topmost window whose rect
// contains the event position. A click inside a non-focused window
// moves focus to it first.
func (f *FocusManager) DispatchMouse(ev input.MouseEvent) bool {
	var target FocusableWindow
	bestZ := -1 << 31
	for _, w := range f.windows {
		if !w.Visible() {
			continue
		}
		if !w.Rect().Contains(ev.Position.X, ev.Position.Y) {
			continue
		}
		if w.ZOrder() >= bestZ {
			bestZ = w.ZOrder()
			target = w
		}
	}
	if target == nil {
		return false
	}
	if target != f.Current() {
		for i, w := range f.windows {
			if w == target {
				prev := f.Current()
				f.current = i
				if f.onChange != nil && prev != target {
					f.onChange(prev, target)
				}
				break
			}
		}
	}
	return target.HandleMouse(ev)
}
