// quickenctl manages a QuickenCL installation.
package main

import (
	"github.com/quicken-build/quickencl/internal/logging"
	"github.com/quicken-build/quickencl/internal/setupcli"
)

func main() {
	logging.Init("quickenctl")
	setupcli.Execute()
}
