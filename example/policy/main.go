// Command policy demonstrates identity registration, role/policy
// attachment, and a deny-wins permission evaluation.
package main

import (
	"fmt"
	"log"

	"github.com/bridgemesh/core/policy"
)

func main() {
	identities := policy.NewIdentityStore()
	if err := identities.Register("alice", "correct horse battery staple"); err != nil {
		log.Fatal(err)
	}

	store := policy.NewStore(identities)
	store.AddRole("reader")
	store.AddPolicy("allow-read", policy.Statement{Effect: policy.EffectAllow, ResourcePattern: "doc:*", ActionPattern: "read"})
	store.AddPolicy("deny-secret", policy.Statement{Effect: policy.EffectDeny, ResourcePattern: "doc:secret", ActionPattern: "read"})
	store.AttachPolicy("reader", "allow-read")
	store.AttachPolicy("reader", "deny-secret")
	if err := identities.AssignRole("alice", "reader"); err != nil {
		log.Fatal(err)
	}

	fmt.Println(store.Evaluate("alice", "doc:public", "read"))
	fmt.Println(store.Evaluate("alice", "doc:secret", "read"))
}
