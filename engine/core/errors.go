package core

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalInit is returned when the engine cannot start: missing graphics
	// context, failed buffer allocation or shader source never loaded.
	ErrFatalInit = errors.New("fatal initialization error")
	// ErrConfiguration marks a precondition violated by the caller, e.g. an
	// invalid sprite sequence or a texture used before it finished loading.
	ErrConfiguration = errors.New("configuration error")
	// ErrAlreadyRunning is returned by Loop.Start when the loop is not stopped.
	ErrAlreadyRunning = errors.New("loop already running")
)

/** @brief A shader stage failed to compile. */
type ShaderCompileError struct {
	Path string
	Log  string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("shader [%s] compiling error: %s", e.Path, e.Log)
}

/** @brief A program failed to link its vertex and fragment stages. */
type ShaderLinkError struct {
	VertexPath   string
	FragmentPath string
	Log          string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("shader linking failed with [%s %s]: %s", e.VertexPath, e.FragmentPath, e.Log)
}
