// Command audit demonstrates wiring a log sink into an audit chain and
// dispatching a trace event through it.
package main

import (
	"fmt"
	"log"

	"github.com/bridgemesh/core/audit"
	"github.com/bridgemesh/core/corectx/logging"
	"github.com/bridgemesh/core/identifier"
)

func main() {
	chain := audit.NewChain(audit.NewSinkAspect(audit.NewLogSink(logging.DefaultLogger(), identifier.FormatUUIDUpper), 100))

	event, err := audit.NewEvent(audit.PointBridgeRegistered, map[string]any{"language": "go"})
	if err != nil {
		log.Fatal(err)
	}
	chain.RunAfter(event)
	fmt.Println("emitted one bridge_registered event")
}
