//go:build !integration

package logger

import "testing"

func TestNewSetsName(t *testing.T) {
	l := New("test:component")
	if l.Name() != "test:component" {
		t.Errorf("Name() = %q, want %q", l.Name(), "test:component")
	}
}

func TestVerboseTogglesEnabled(t *testing.T) {
	SetVerbose(false)
	l := New("test:verbose")
	if l.Enabled() {
		t.Error("Enabled() = true, want false at info level")
	}

	SetVerbose(true)
	defer SetVerbose(false)
	if !l.Enabled() {
		t.Error("Enabled() = false, want true at debug level")
	}
}

func TestWithPreservesName(t *testing.T) {
	l := New("test:with")
	derived := l.With("repo", "octocat/hello-world")
	if derived.Name() != l.Name() {
		t.Errorf("With() changed name: got %q, want %q", derived.Name(), l.Name())
	}
}

func TestPrintMethodsDoNotPanic(t *testing.T) {
	l := New("test:print")
	l.Print("hello")
	l.Printf("hello %s", "world")
	l.Debug("debug line")
	l.Debugf("debug %d", 1)
	l.Warn("warn line")
	l.Warnf("warn %d", 2)
	l.Error("failed", nil)
	l.Errorf("failed: %v", "boom")
}
