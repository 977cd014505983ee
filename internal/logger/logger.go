// Package logger provides a package-level logging facade that dispatches to
// one or more backends. Calls made before Init are silently dropped.
package logger

import "sync"

// Instance is a logging backend.
type Instance interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

type dispatcher struct {
	instances []Instance
}

var (
	mu        sync.RWMutex
	singleton *dispatcher
)

func current() *dispatcher {
	mu.RLock()
	defer mu.RUnlock()
	return singleton
}

// Init installs the given backends as the global logger, replacing any
// previously installed ones. Init with no arguments disables logging.
func Init(instances ...Instance) {
	mu.Lock()
	defer mu.Unlock()
	if len(instances) == 0 {
		singleton = nil
		return
	}
	singleton = &dispatcher{instances: instances}
}

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) {
	d := current()
	if d == nil {
		return
	}
	for _, instance := range d.instances {
		instance.Debug(message, keyvals...)
	}
}

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) {
	d := current()
	if d == nil {
		return
	}
	for _, instance := range d.instances {
		instance.Info(message, keyvals...)
	}
}

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) {
	d := current()
	if d == nil {
		return
	}
	for _, instance := range d.instances {
		instance.Warn(message, keyvals...)
	}
}

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) {
	d := current()
	if d == nil {
		return
	}
	for _, instance := range d.instances {
		instance.Error(message, keyvals...)
	}
}
