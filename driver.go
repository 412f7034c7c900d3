package webview

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// State is the engine lifecycle state. There is no transition out of
// StateFailed and none back to StateUninitialized: a failed or torn-down
// engine is not reusable.
type State int32

const (
	StateUninitialized State = iota
	StateEnvironmentBuilding
	StateControllerBuilding
	StateConfiguring
	StateNavigating
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateEnvironmentBuilding:
		return "environment_building"
	case StateControllerBuilding:
		return "controller_building"
	case StateConfiguring:
		return "configuring"
	case StateNavigating:
		return "navigating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// driver orchestrates the asynchronous native initialization chain:
// environment, controller, configuration (settings, scripts, bridge,
// interception, permissions, file drop), navigation, and finally the
// deposit of the live controller into the engine cell. Each step runs
// inside a native callback on the UI thread; any failure parks the driver
// in StateFailed with no retry.
type driver struct {
	engine   Engine
	opts     Options
	cell     *engineCell
	bridge   *bridge
	protocol *protocolAdapter
	scripts  *scriptQueue

	state atomic.Int32

	errMu sync.Mutex
	err   error
}

func newDriver(engine Engine, opts Options, cell *engineCell) *driver {
	d := &driver{
		engine: engine,
		opts:   opts,
		cell:   cell,
	}
	if opts.Handler != nil {
		d.bridge = newBridge(opts.Handler, cell)
	}
	if opts.Protocol != nil {
		d.protocol = newProtocolAdapter(opts.Protocol)
	}
	d.scripts = newScriptQueue(bootstrapScript(engine.Capabilities().PostExpression), opts.Scripts)
	return d
}

// start validates requested capabilities and kicks off the callback chain.
// It returns only errors that prevent the chain from starting; anything
// later is surfaced through State and Err.
func (d *driver) start() error {
	caps := d.engine.Capabilities()
	if d.protocol != nil && !caps.CustomSchemes && !caps.ResourceFilters {
		err := unsupportedError("custom protocol " + d.protocol.scheme + " not supported by engine")
		d.fail(err)
		return err
	}
	if d.opts.FileDrop != nil && !caps.FileDrop {
		err := unsupportedError("file drop not supported by engine")
		d.fail(err)
		return err
	}

	d.setState(StateEnvironmentBuilding)
	if err := d.engine.NewEnvironment(d.onEnvironment); err != nil {
		e := initError("build environment", err)
		d.fail(e)
		return e
	}
	return nil
}

func (d *driver) onEnvironment(env Environment, err error) {
	if err != nil {
		d.fail(initError("build environment", err))
		return
	}
	d.setState(StateControllerBuilding)
	if err := env.NewController(d.opts.Window, d.onController); err != nil {
		d.fail(initError("build controller", err))
	}
}

func (d *driver) onController(ctrl Controller, err error) {
	if err != nil {
		d.fail(initError("build controller", err))
		return
	}
	if err := d.configure(ctrl); err != nil {
		if cerr := ctrl.Close(); cerr != nil {
			Logger().Warn("closing half-configured controller", zap.Error(cerr))
		}
		d.fail(err)
	}
}

func (d *driver) configure(ctrl Controller) error {
	d.setState(StateConfiguring)

	if err := ctrl.ApplySettings(defaultSettings(d.opts.Debug)); err != nil {
		return initError("apply settings", err)
	}
	if err := ctrl.SetBounds(d.opts.Bounds); err != nil {
		return initError("apply bounds", err)
	}

	if err := d.scripts.register(ctrl); err != nil {
		return err
	}

	if d.bridge != nil {
		if err := ctrl.OnWebMessageReceived(d.bridge.onMessage); err != nil {
			return initError("attach message bridge", err)
		}
	}

	if d.protocol != nil {
		if err := d.protocol.attach(ctrl, d.engine.Capabilities()); err != nil {
			return initError("attach custom protocol", err)
		}
	}

	if err := ctrl.OnPermissionRequested(grantClipboard); err != nil {
		return initError("attach permission handler", err)
	}

	if d.opts.FileDrop != nil {
		if err := ctrl.OnFileDrop(d.opts.FileDrop); err != nil {
			return initError("attach file drop handler", err)
		}
	}

	d.setState(StateNavigating)
	if d.opts.URL != "" {
		target := d.opts.URL
		if d.protocol != nil {
			target = d.protocol.rewriteNavigation(target)
		}
		if err := ctrl.Navigate(target); err != nil {
			return initError("navigate", err)
		}
	}

	if !d.cell.set(ctrl) {
		// Destroy won the race with initialization: the controller must
		// not outlive the webview. The error path closes it.
		return initError("webview destroyed during initialization", nil)
	}
	d.setState(StateReady)
	return nil
}

func (d *driver) setState(s State) {
	d.state.Store(int32(s))
}

// State reports the current lifecycle state.
func (d *driver) State() State {
	return State(d.state.Load())
}

// Err returns the error that parked the driver in StateFailed, or nil.
func (d *driver) Err() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}

func (d *driver) fail(err error) {
	d.errMu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.errMu.Unlock()
	d.setState(StateFailed)
	Logger().Error("webview initialization failed", zap.Error(err))
}

func defaultSettings(debug bool) Settings {
	return Settings{
		StatusBar:           false,
		DefaultContextMenus: true,
		ZoomControl:         false,
		DevTools:            debug,
	}
}

func grantClipboard(kind PermissionKind) PermissionDecision {
	if kind == PermissionClipboardRead {
		return PermissionAllow
	}
	return PermissionDefault
}
