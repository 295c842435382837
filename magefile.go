//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "callical"

// Default target to run when none is specified
var Default = Build

// Build compiles the callical binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/callical")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet on all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install installs callical into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/callical")
}

// Run starts the HTTP API with an in-memory store
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./"+binary, "serve", "--ephemeral")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	if err := sh.Rm(binary); err != nil {
		return err
	}
	return os.RemoveAll("dist")
}
