//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the viewer against the mesh files named in BRICKLAYER_MODELS.
func (Run) Viewer() error {
	fmt.Println("Run viewer...")
	args := append([]string{"run", "."}, os.Args[2:]...)
	if models := os.Getenv("BRICKLAYER_MODELS"); models != "" {
		args = append(args, models)
	}
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
