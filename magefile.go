//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "ordertrans"
	mainPath   = "./cmd/ordertrans"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the ordertrans binary
func Build() error {
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, mainPath)
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install builds and copies the binary to $GOPATH/bin
func Install() error {
	mg.Deps(Build)

	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	dest := filepath.Join(gopath, "bin", binaryName)
	fmt.Println("Installing to", dest)
	return sh.Copy(dest, binaryName)
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binaryName)
}
