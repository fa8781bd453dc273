// Package ra provides a backend-agnostic render abstraction (RA) layer
// for the GoGPU ecosystem.
//
// # Overview
//
// ra sits between a renderer and a concrete graphics API. It negotiates
// pixel/texture formats, manages GPU object lifecycles (textures, mapped
// buffers, render passes) and executes draw and compute dispatches that a
// higher-level renderer describes. The renderer itself, video decoding and
// window-system integration are external collaborators consumed through
// narrow interfaces; ra only executes what it is told.
//
// # Architecture
//
// The module is organized into:
//   - ra (this package): the Device interface, format registry queries and
//     the texture/buffer/render-pass data model
//   - shader: GLSL shader generation, program caching (in memory and on
//     disk) and uniform diffing
//   - backend: named backend registry with priority selection
//   - backend/gl: the OpenGL backend, driven by a host-provided function
//     table
//
// # Quick Start
//
//	funcs := host.GLFunctions() // host supplies the GL entry points
//	dev, err := gl.New(funcs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//
//	sc := shader.New(dev, shader.Options{Dir: cacheDir})
//	defer sc.Destroy()
//
// # Concurrency
//
// All Device operations, shader generation and disk cache I/O must run on
// the thread that owns the graphics context. The only non-blocking
// GPU-synchronization primitive is PollMappedBuffer; nothing in this
// module waits on the GPU.
package ra

// Version is the current version of the library.
const Version = "0.1.0"
