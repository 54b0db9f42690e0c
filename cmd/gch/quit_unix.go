//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// registerQuitHandler makes SIGQUIT stop the listener at once, leaving any
// in-flight backend call behind. removeSocket runs first so the next start
// does not have to clear a stale socket.
func registerQuitHandler(removeSocket func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGQUIT)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "SIGQUIT: stopping immediately")
		removeSocket()
		os.Exit(1)
	}()
}
