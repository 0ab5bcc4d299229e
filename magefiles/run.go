//go:build mage

package main

import (
	"fmt"
	"strconv"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and opens the showcase window with showcase.toml.
func (Run) Showcase() error {
	mg.Deps(Build.Showcase)
	fmt.Println("Run showcase...")
	_, err := executeCmd(binary, withArgs("-config", "showcase.toml"), withStream())
	return err
}

// Loads the configured asset without a window and prints the final state after the given number of frames.
func (Run) Headless(frames int) error {
	mg.Deps(Build.Showcase)
	_, err := executeCmd(binary, withArgs("-config", "showcase.toml", "-profile", "-headless", strconv.Itoa(frames)), withStream())
	return err
}
