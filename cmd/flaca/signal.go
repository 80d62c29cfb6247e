package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/flaca-project/flaca/internal/pool"
)

// installSignalHandler hooks SIGINT/SIGTERM to interrupt.Signal(), the only
// thing a signal handler is allowed to do per spec.md's design notes
// ("Signal-handler cross-thread control: ... Signal handler itself does
// only an atomic increment"). All cancellation policy (drain vs. abort)
// lives in pool.Interrupt and the workers that poll it, never here.
func installSignalHandler(interrupt *pool.Interrupt) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range c {
			interrupt.Signal()
		}
	}()
}
