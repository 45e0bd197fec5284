//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed rig for ten seconds, writing previews to previews/.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", ".", "-ticks", "600", "-preview", "previews", "-log-level", "debug"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the given rig file and reloads it on change until interrupted.
func (Run) Rig(path string) error {
	fmt.Printf("Run rig %s...\n", path)
	if _, err := executeCmd("go", withArgs("run", ".", "-rig", path, "-watch", "-out", "-"), withStream()); err != nil {
		return err
	}
	return nil
}
