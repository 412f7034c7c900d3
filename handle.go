package webview

import "sync"

// engineCell is a shared, lazily populated slot for the live controller.
// It is written exactly once, from the UI thread, when asynchronous
// initialization completes; reads may come from any goroutine.
//
// Operations against an empty cell are deliberate no-ops: initialization
// races are expected and callers must not be forced to block or retry.
type engineCell struct {
	mu         sync.RWMutex
	controller Controller
	closed     bool
}

// set deposits the controller. It succeeds at most once and never after
// clear; rejected calls report false and leave teardown of the offered
// controller to the caller.
func (c *engineCell) set(ctrl Controller) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.controller != nil {
		return false
	}
	c.controller = ctrl
	return true
}

func (c *engineCell) get() (Controller, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controller, c.controller != nil
}

// clear empties the cell permanently and returns the controller that was
// held, if any. A cleared cell refuses later deposits, so a controller
// arriving from a still-running initialization chain cannot revive a
// torn-down webview.
func (c *engineCell) clear() (Controller, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	ctrl := c.controller
	c.controller = nil
	return ctrl, ctrl != nil
}

// evaluate executes js against the live engine, or drops it silently when
// the engine is not ready yet.
func (c *engineCell) evaluate(js string) error {
	ctrl, ok := c.get()
	if !ok {
		return nil
	}
	return ctrl.ExecuteScript(js)
}

// resize applies new bounds only if the engine is live.
func (c *engineCell) resize(b Bounds) error {
	ctrl, ok := c.get()
	if !ok {
		return nil
	}
	return ctrl.SetBounds(b)
}
