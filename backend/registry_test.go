package backend

import (
	"testing"

	"github.com/gogpu/ra"
)

type stubBackend struct {
	name string
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) New(hostContext any) (ra.Device, error) {
	return nil, ErrBadContext
}

func TestRegistry(t *testing.T) {
	stub := &stubBackend{name: "stub"}
	Register("stub", stub)
	defer Unregister("stub")

	if !IsRegistered("stub") {
		t.Error("stub not registered")
	}
	if got := Get("stub"); got != stub {
		t.Errorf("Get(stub) = %v", got)
	}

	found := false
	for _, name := range Available() {
		if name == "stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing stub", Available())
	}

	Unregister("stub")
	if IsRegistered("stub") {
		t.Error("stub still registered after Unregister")
	}
	if Get("stub") != nil {
		t.Error("Get returned an unregistered backend")
	}
}

func TestDefaultPriority(t *testing.T) {
	glStub := &stubBackend{name: BackendGL}
	other := &stubBackend{name: "other"}
	Register(BackendGL, glStub)
	Register("other", other)
	defer Unregister(BackendGL)
	defer Unregister("other")

	if got := Default(); got != glStub {
		t.Errorf("Default() = %v, want the gl backend", got)
	}

	// Without a priority match, any registered backend serves.
	Unregister(BackendGL)
	if got := Default(); got != other {
		t.Errorf("Default() = %v, want fallback backend", got)
	}
}

func TestMustDefaultPanics(t *testing.T) {
	for _, name := range Available() {
		Unregister(name)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustDefault did not panic with no backends")
		}
	}()
	MustDefault()
}
