//go:build darwin || linux

package webview

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

// defaultEngine returns the WebKit-backed engine host. WebKit registers
// non-standard schemes natively, so no interception workaround is needed.
func defaultEngine() Engine {
	load()
	return &nativeEngine{caps: Capabilities{
		PostExpression: "window.webkit.messageHandlers.external.postMessage",
		CustomSchemes:  true,
		FileDrop:       true,
	}}
}

func load() {
	loadOnce.Do(func() {
		var name string
		var paths []string
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		switch runtime.GOOS {
		case "linux":
			name = "libemberview.so"
			paths = []string{
				os.Getenv("EMBERVIEW_PATH"),
				execDir,
			}
		case "darwin":
			name = "libemberview.dylib"
			paths = []string{
				os.Getenv("EMBERVIEW_PATH"),
				execDir,
				filepath.Join(execDir, "..", "Frameworks"),
			}
		}

		fname := name
		for _, v := range paths {
			fn := filepath.Join(v, name)
			if _, err := os.Stat(fn); err == nil {
				fname = fn
				break
			}
		}

		libHandle, err := purego.Dlopen(fname, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			panic("webview: failed to load engine host library: " + err.Error())
		}
		if libHandle == 0 {
			panic("webview: engine host library not loaded")
		}
		// Resolve all required symbols from the library
		pEnvironmentCreate = mustLoadSymbol(libHandle, "emberview_environment_create")
		pControllerCreate = mustLoadSymbol(libHandle, "emberview_controller_create")
		pControllerSettings = mustLoadSymbol(libHandle, "emberview_controller_settings")
		pControllerBounds = mustLoadSymbol(libHandle, "emberview_controller_bounds")
		pAddScript = mustLoadSymbol(libHandle, "emberview_add_script")
		pOnMessage = mustLoadSymbol(libHandle, "emberview_on_message")
		pAddResourceFilter = mustLoadSymbol(libHandle, "emberview_add_resource_filter")
		pOnResource = mustLoadSymbol(libHandle, "emberview_on_resource")
		pRegisterScheme = mustLoadSymbol(libHandle, "emberview_register_scheme")
		pOnPermission = mustLoadSymbol(libHandle, "emberview_on_permission")
		pOnFileDrop = mustLoadSymbol(libHandle, "emberview_on_file_drop")
		pNavigate = mustLoadSymbol(libHandle, "emberview_navigate")
		pExecuteScript = mustLoadSymbol(libHandle, "emberview_execute_script")
		pClose = mustLoadSymbol(libHandle, "emberview_close")
		pResponseCreate = mustLoadSymbol(libHandle, "emberview_response_create")

		// Create C-callable trampolines for the engine's callbacks
		envCreatedPtr = purego.NewCallback(envCreatedTrampoline)
		ctrlCreatedPtr = purego.NewCallback(ctrlCreatedTrampoline)
		scriptAddedPtr = purego.NewCallback(scriptAddedTrampoline)
		messagePtr = purego.NewCallback(messageTrampoline)
		resourcePtr = purego.NewCallback(resourceTrampoline)
		permissionPtr = purego.NewCallback(permissionTrampoline)
		fileDropPtr = purego.NewCallback(fileDropTrampoline)
	})
}

// mustLoadSymbol looks up a symbol and panics if not found.
func mustLoadSymbol(lib uintptr, name string) uintptr {
	ptr, err := purego.Dlsym(lib, name)
	if err != nil {
		panic("webview: failed to load symbol " + name + ": " + err.Error())
	}
	if ptr == 0 {
		panic("webview: failed to load symbol " + name)
	}
	return ptr
}

func call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}
