// Command topology demonstrates moving a calling thread across the
// interpreter-lock and event-loop host adapters, including a rejected
// transition when the legality matrix has not been configured for it.
package main

import (
	"fmt"
	"log"

	"github.com/bridgemesh/core/topology"
	"github.com/bridgemesh/core/topology/adapters"
)

func main() {
	matrix := topology.NewTransitionMatrix()
	matrix.Allow(topology.LayerInterpreterLock, topology.LayerEventLoop)
	mgr := topology.NewManager(matrix)

	if err := mgr.RegisterAdapter(topology.LayerInterpreterLock, adapters.NewInterpreterLockAdapter()); err != nil {
		log.Fatal(err)
	}
	if err := mgr.RegisterAdapter(topology.LayerEventLoop, adapters.NewEventLoopAdapter("", nil)); err != nil {
		log.Fatal(err)
	}
	if err := mgr.RegisterAdapter(topology.LayerGreenThread, adapters.NewGreenThreadAdapter()); err != nil {
		log.Fatal(err)
	}

	orch := topology.NewOrchestrator(mgr)
	const thread topology.ThreadID = 1

	if err := orch.Orchestrate(thread, topology.LayerInterpreterLock, topology.LayerEventLoop); err != nil {
		log.Fatal(err)
	}
	fmt.Println("interpreter-lock -> event-loop: ok")

	if err := orch.Orchestrate(thread, topology.LayerEventLoop, topology.LayerGreenThread); err != nil {
		fmt.Println("event-loop -> green-thread rejected:", err)
	}
}
