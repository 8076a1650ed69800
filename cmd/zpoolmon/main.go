// Package main is the entry point for the pool monitor.
package main

import (
	"zpoolmon/cmd/zpoolmon/cmd"
)

func main() {
	cmd.Execute()
}
