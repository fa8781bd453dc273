// Package backend provides a pluggable graphics backend registry for ra.
//
// Concrete backends (backend/gl, future Vulkan or WebGPU backends)
// register a factory via init() and are selected by name or by priority
// at device-initialization time:
//
//	import _ "github.com/gogpu/ra/backend/gl"
//
//	dev, err := backend.Get("gl").New(glFunctions)
//
// Call sites hold only the abstract ra.Device afterwards; nothing
// backend-specific leaks past device creation.
package backend

import (
	"errors"

	"github.com/gogpu/ra"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrBadContext is returned by a factory when the host context has
	// the wrong type for the backend.
	ErrBadContext = errors.New("backend: host context has wrong type")
)

// Known backend names.
const (
	// BackendGL is the OpenGL backend (backend/gl).
	BackendGL = "gl"
)

// Backend creates ra devices for one graphics API.
type Backend interface {
	// Name returns the backend identifier (e.g. "gl").
	Name() string

	// New creates a device from the host-provided graphics context
	// (for example *gl.Functions for the GL backend). The host keeps
	// ownership of the underlying context; Destroy on the returned
	// device never tears the context down.
	New(hostContext any) (ra.Device, error)
}
