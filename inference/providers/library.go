// Package providers - Native runtime library location and initialization.
package providers

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// SharedLibraryEnv overrides the ONNX Runtime shared library location when
// set.
const SharedLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

var (
	initOnce sync.Once
	initErr  error
)

// GetSharedLibPath returns the path to the onnxruntime shared library for the
// current platform. The environment variable takes precedence over the
// bundled defaults.
func GetSharedLibPath() string {
	if path := os.Getenv(SharedLibraryEnv); path != "" {
		return path
	}

	if runtime.GOOS == "windows" {
		return "third_party/onnxruntime.dll"
	}
	if runtime.GOOS == "darwin" {
		return "third_party/libonnxruntime.dylib"
	}
	if runtime.GOARCH == "arm64" {
		return "third_party/onnxruntime_arm64.so"
	}
	return "third_party/onnxruntime.so"
}

// Initialize loads the native ONNX Runtime library and prepares its
// environment. Required once per process before any session is created; safe
// to call from multiple goroutines.
func Initialize() error {
	initOnce.Do(func() {
		libPath := GetSharedLibPath()
		if _, err := os.Stat(libPath); os.IsNotExist(err) {
			initErr = fmt.Errorf(
				"ONNX Runtime library not found at %s (set %s to override): %w",
				libPath, SharedLibraryEnv, err,
			)
			return
		}

		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			initErr = fmt.Errorf("error initializing ORT environment: %w", err)
		}
	})
	return initErr
}
