// Command resource demonstrates the per-component allocation protocol,
// including a threshold callback and a quota rejection.
package main

import (
	"fmt"

	"github.com/bridgemesh/core/resource"
)

func main() {
	limiter := resource.NewLimiter("demo-component", 100, 100, 100)
	limiter.OnThreshold(func(kind resource.Kind, current, limit int64) {
		if current*2 >= limit {
			fmt.Printf("kind %d crossed half of its quota: %d/%d\n", kind, current, limit)
		}
	})

	if err := limiter.Allocate(resource.KindMemory, 60); err != nil {
		fmt.Println("unexpected error:", err)
	}
	if err := limiter.Allocate(resource.KindMemory, 60); err != nil {
		fmt.Println("allocation rejected:", err)
	}
	limiter.Free(resource.KindMemory, 60)
	fmt.Println(limiter.Snapshot(resource.KindMemory))
}
