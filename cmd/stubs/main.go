// Standalone event-source stub. Serves the remote generator contract so the
// simulator can run with source.mode=http against localhost.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/observ"
	"github.com/hedgelabs/hedge-sim/internal/stubs"
)

func main() {
	addr := flag.String("addr", ":8091", "listen address")
	seed := flag.Int64("seed", 0, "generator seed (0 = time-based)")
	latencyMs := flag.Int("latency-ms", 0, "artificial response latency")
	failFirst := flag.Int("fail-first", 0, "fail the first N generate calls")
	flag.Parse()

	gen := event.NewGenerator()
	if *seed != 0 {
		gen = event.NewGeneratorSeeded(*seed)
	}

	srv := stubs.NewServer(gen)
	if *latencyMs > 0 {
		srv.SetLatency(time.Duration(*latencyMs) * time.Millisecond)
	}
	if *failFirst > 0 {
		srv.FailNext(*failFirst)
	}

	observ.Log("stub_listening", map[string]any{"addr": *addr})
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		log.Fatalf("stub server: %v", err)
	}
}
