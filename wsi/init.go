// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package wsi

// init selects GLFW as the sole windowing backend, falling back to the
// dummy backend (NewWindow always fails) when GLFW itself cannot be
// initialized - e.g. no display server reachable in a headless
// environment.
func init() {
	if err := initGlfw(); err != nil {
		initDummy()
	}
}
