// Command callthrough demonstrates the minimal gateway lifecycle: build a
// context, register a bridge, and make one cross-language call.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/bridgemesh/core/corectx"
	"github.com/bridgemesh/core/ffi"
	"github.com/bridgemesh/core/identifier"
)

func main() {
	cfg, err := corectx.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	ctx := corectx.New(cfg)
	if err := ctx.Start(); err != nil {
		log.Fatal(err)
	}

	upper := ffi.NewFunc("go", func(cc *ffi.CallContext, fn string, arg ffi.Value) (ffi.Value, error) {
		s, _ := arg.String()
		switch fn {
		case "shout":
			return ffi.String(s + "!"), nil
		default:
			return ffi.Value{}, fmt.Errorf("unknown function %q", fn)
		}
	})
	if err := ctx.RegisterBridge(upper); err != nil {
		log.Fatal(err)
	}

	id, err := identifier.New()
	if err != nil {
		log.Fatal(err)
	}
	cc := ffi.NewCallContext(context.Background(), "demo", "go", "shout", ffi.String("hello"), id)
	result, err := ctx.Call(cc)
	if err != nil {
		log.Fatal(err)
	}
	s, _ := result.String()
	fmt.Println(s)

	if aggregated := ctx.Shutdown(); len(aggregated) > 0 {
		log.Fatalf("shutdown reported errors: %v", aggregated)
	}
}
