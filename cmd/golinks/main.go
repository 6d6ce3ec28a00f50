package main

import "os"

const (
	appName = "golinks"
)

var (
	version string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
