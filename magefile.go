//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "flickfinder"

// Default target to run when none is specified
var Default = Build

// Build compiles the flickfinder binary into the project root
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/flickfinder")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet on all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and copies the binary to $GOPATH/bin
func Install() error {
	mg.Deps(Build)

	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binary), binary)
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll(binary)
}
