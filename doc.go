/*
Package guide drives multi-turn voice dialogues as a per-session state machine.

A scenario declares named steps connected by named events. Each event may move the
session to another step and/or invoke a named action. The scenario is validated
once at load time (duplicates, undefined steps, undefined actions, unreachable
steps) and compiled into transition rules. At runtime the Supervisor keeps one
machine per session id, guards every transition, supports one-level rollback and
explicit overrides, and evicts abandoned sessions in the background.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/guide"
		"github.com/aretw0/guide/pkg/registry"
	)

	func main() {
		actions := registry.NewRegistry()
		actions.RegisterFunc("brew", func(ctx context.Context, args, session map[string]any) (any, error) {
			return "brewing " + args["size"].(string), nil
		}, "size")

		sup, err := guide.New("./coffee.yaml", guide.WithActions(actions))
		if err != nil {
			log.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sup.Run(ctx) // Reaper

		resp := sup.Begin("session-123")
		fmt.Println(resp.Prompt)

		resp = sup.Guide(ctx, "session-123", "order", map[string]any{"size": "large"}, map[string]any{})
		fmt.Println(resp.Type, resp.Prompt)
	}

Runtime failures never escape as errors: they are answered with a reprompt (the
event does not fit the current step) or a generic error statement.
*/
package guide
