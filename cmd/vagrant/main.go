// Package main is the entry point for the vagrant application.
package main

import (
	"os"

	"github.com/lseinc/vagrant/cmd/vagrant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
