//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs the tests that need no window or GL driver, without cgo.
func (Test) Headless() error {
	_, err := executeCmd("go",
		withArgs("test", "-count=1",
			"./engine/core/...", "./engine/containers/...", "./engine/math/...", "./engine/resources/...",
			"./engine/renderer", "./engine/renderer/components/...", "./engine", "./testbed"),
		withEnv("CGO_ENABLED=0"),
		withStream(),
	)
	return err
}
