// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package wsi

import "testing"

// These assert against the dummy backend directly rather than through
// init()'s GLFW-then-dummy selection, since a real GLFW platform needs a
// display server this environment does not guarantee.

func TestDummyNewWindowFails(t *testing.T) {
	initDummy()
	win, err := newWindow(480, 360, "headless")
	if win != nil || err != errMissing {
		t.Fatalf("newWindow: got (%v, %v), want (nil, %v)", win, err, errMissing)
	}
	if n := len(Windows()); n != 0 {
		t.Fatalf("Windows(): got %d, want 0", n)
	}
}

func TestDummyDispatchIsNoop(t *testing.T) {
	initDummy()
	Dispatch()
	if PlatformInUse() != None {
		t.Fatalf("PlatformInUse(): got %v, want None", PlatformInUse())
	}
}
