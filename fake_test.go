package webview

// fakeEngine implements Engine against in-memory state so the lifecycle,
// bridge and interception code can be driven without a native library or a
// display.
type fakeEngine struct {
	caps Capabilities
	ctrl *fakeController

	envStartErr error // returned by NewEnvironment itself
	envErr      error // delivered through the environment callback
	ctrlErr     error // delivered through the controller callback

	// manual defers completion of the environment callback until release
	// is called, so callers can observe the not-yet-ready window.
	manual  bool
	pending func()

	windows []uintptr
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		caps: Capabilities{
			PostExpression:  "window.chrome.webview.postMessage",
			ResourceFilters: true,
			FileDrop:        true,
		},
		ctrl: newFakeController(),
	}
}

func (e *fakeEngine) Capabilities() Capabilities { return e.caps }

func (e *fakeEngine) NewEnvironment(done func(Environment, error)) error {
	if e.envStartErr != nil {
		return e.envStartErr
	}
	fn := func() {
		if e.envErr != nil {
			done(nil, e.envErr)
			return
		}
		done(&fakeEnvironment{engine: e}, nil)
	}
	if e.manual {
		e.pending = fn
		return nil
	}
	fn()
	return nil
}

// release completes a deferred environment build.
func (e *fakeEngine) release() {
	if e.pending != nil {
		e.pending()
		e.pending = nil
	}
}

func (e *fakeEngine) Dispatch(fn func()) { fn() }

type fakeEnvironment struct {
	engine *fakeEngine
}

func (env *fakeEnvironment) NewController(window uintptr, done func(Controller, error)) error {
	env.engine.windows = append(env.engine.windows, window)
	if env.engine.ctrlErr != nil {
		done(nil, env.engine.ctrlErr)
		return nil
	}
	done(env.engine.ctrl, nil)
	return nil
}

type fakeController struct {
	settings    Settings
	bounds      []Bounds
	scripts     []string // document-created scripts, in registration order
	executed    []string // ExecuteScript calls
	filters     []string
	navigations []string
	schemes     map[string]func(string) (*Response, error)
	resource    func(string) (*Response, error)
	message     func(string)
	permission  func(PermissionKind) PermissionDecision
	fileDrop    FileDropHandler
	closed      bool

	scriptSubmitErr error // fail the registration call itself
	scriptDoneErr   error // fail the asynchronous completion
	execErr         error
}

func newFakeController() *fakeController {
	return &fakeController{schemes: make(map[string]func(string) (*Response, error))}
}

func (c *fakeController) ApplySettings(s Settings) error {
	c.settings = s
	return nil
}

func (c *fakeController) SetBounds(b Bounds) error {
	c.bounds = append(c.bounds, b)
	return nil
}

func (c *fakeController) AddScriptToExecuteOnDocumentCreated(js string, done func(error)) error {
	if c.scriptSubmitErr != nil {
		return c.scriptSubmitErr
	}
	c.scripts = append(c.scripts, js)
	done(c.scriptDoneErr)
	return nil
}

func (c *fakeController) OnWebMessageReceived(fn func(string)) error {
	c.message = fn
	return nil
}

func (c *fakeController) AddWebResourceRequestedFilter(prefix string) error {
	c.filters = append(c.filters, prefix)
	return nil
}

func (c *fakeController) OnWebResourceRequested(fn func(string) (*Response, error)) error {
	c.resource = fn
	return nil
}

func (c *fakeController) RegisterSchemeHandler(scheme string, fn func(string) (*Response, error)) error {
	c.schemes[scheme] = fn
	return nil
}

func (c *fakeController) OnPermissionRequested(fn func(PermissionKind) PermissionDecision) error {
	c.permission = fn
	return nil
}

func (c *fakeController) OnFileDrop(fn FileDropHandler) error {
	c.fileDrop = fn
	return nil
}

func (c *fakeController) Navigate(url string) error {
	c.navigations = append(c.navigations, url)
	return nil
}

func (c *fakeController) ExecuteScript(js string) error {
	if c.execErr != nil {
		return c.execErr
	}
	c.executed = append(c.executed, js)
	return nil
}

func (c *fakeController) Close() error {
	c.closed = true
	c.message = nil
	c.resource = nil
	c.permission = nil
	c.fileDrop = nil
	return nil
}
