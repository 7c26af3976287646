//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the engine and runs the testbed with anima.toml.
func (Run) Testbed() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run testbed...")
	_, err := executeCmd("bin/anima2d", withArgs("-config", "anima.toml"), withStream())
	return err
}
