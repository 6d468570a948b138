// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow implements Window on top of GLFW.
type glfwWindow struct {
	win   *glfw.Window
	title string
}

func (w *glfwWindow) Map() error {
	w.win.Show()
	return nil
}

func (w *glfwWindow) Unmap() error {
	w.win.Hide()
	return nil
}

func (w *glfwWindow) Resize(width, height int) error {
	w.win.SetSize(width, height)
	return nil
}

func (w *glfwWindow) SetTitle(title string) error {
	w.win.SetTitle(title)
	w.title = title
	return nil
}

func (w *glfwWindow) Close() {
	closeWindow(w)
	w.win.Destroy()
}

func (w *glfwWindow) Width() int {
	width, _ := w.win.GetSize()
	return width
}

func (w *glfwWindow) Height() int {
	_, height := w.win.GetSize()
	return height
}

func (w *glfwWindow) Title() string { return w.title }

var glfwOnce sync.Once
var glfwInitErr error

// initGlfw initializes the GLFW platform, the sole windowing backend
// this module implements (see init.go).
func initGlfw() error {
	glfwOnce.Do(func() {
		glfwInitErr = glfw.Init()
	})
	if glfwInitErr != nil {
		return glfwInitErr
	}
	newWindow = newWindowGlfw
	dispatch = glfw.PollEvents
	setAppName = func(string) {}
	platform = Glfw
	return nil
}

// newWindowGlfw creates a new GLFW-backed window.
func newWindowGlfw(width, height int, title string) (Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.New("wsi: " + err.Error())
	}
	w := &glfwWindow{win: win, title: title}
	win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		if windowHandler != nil {
			windowHandler.WindowResize(w, width, height)
		}
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		if windowHandler != nil {
			windowHandler.WindowClose(w)
		}
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if keyboardHandler == nil || action == glfw.Repeat {
			return
		}
		keyboardHandler.KeyboardKey(convGlfwKey(key), action == glfw.Press, convGlfwMods(mods))
	})
	return w, nil
}

// convGlfwKey converts a glfw.Key to a wsi.Key, covering the subset
// of keys exercised by the example/demo harness.
func convGlfwKey(key glfw.Key) Key {
	switch key {
	case glfw.KeyEscape:
		return KeyEsc
	case glfw.KeySpace:
		return KeySpace
	case glfw.KeyUp:
		return KeyUp
	case glfw.KeyDown:
		return KeyDown
	case glfw.KeyLeft:
		return KeyLeft
	case glfw.KeyRight:
		return KeyRight
	default:
		return KeyUnknown
	}
}

// convGlfwMods converts a glfw.ModifierKey mask to a wsi.Modifier mask.
func convGlfwMods(mods glfw.ModifierKey) Modifier {
	var m Modifier
	if mods&glfw.ModShift != 0 {
		m |= ModShift
	}
	if mods&glfw.ModControl != 0 {
		m |= ModCtrl
	}
	if mods&glfw.ModAlt != 0 {
		m |= ModAlt
	}
	return m
}
