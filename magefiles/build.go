//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const binary = "bin/oxy-showcase"

// Builds the showcase binary into bin/.
func (Build) Showcase() error {
	_, err := executeCmd("go", withArgs("build", "-o", binary, "./cmd/oxy-showcase"), withStream())
	return err
}

// Runs go mod tidy.
func (Build) Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"), withStream())
	return err
}

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs the tests that need no GPU or display: the showcase lifecycle and the loader.
func (Test) Headless() error {
	_, err := executeCmd("go", withArgs("test", "./engine/showcase/...", "./engine/loader/...", "./engine/renderer/..."), withStream())
	return err
}
