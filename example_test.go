package stagehand_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/launch"
)

// ExampleNew walks two containers through the host lifecycle on a shared engine.
func ExampleNew() {
	journal := virtual.NewJournal()
	co, err := stagehand.New(stagehand.WithEngine(virtual.NewEngine(domain.DefaultEngineID, journal)))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	for _, id := range []string{"home", "detail"} {
		desc, err := launch.NewBuilder().URL("/" + id).UniqueID(id).Build()
		if err != nil {
			log.Fatal(err)
		}
		if _, err := co.Create(ctx, desc, virtual.NewSurfaces(id, journal)); err != nil {
			log.Fatal(err)
		}
	}

	_ = co.Resume(ctx, "home")
	_ = co.Pause(ctx, "home")
	_ = co.Resume(ctx, "detail")

	owner, _ := co.AttachedTo(domain.DefaultEngineID)
	fmt.Println("top:", co.Top().UniqueID())
	fmt.Println("attached:", owner)
	for _, op := range journal.Filter(virtual.OpAttach, virtual.OpDetach) {
		fmt.Println(op)
	}
	// Output:
	// top: detail
	// attached: detail
	// attach:home@stagehand_default_engine
	// detach:home@stagehand_default_engine
	// attach:detail@stagehand_default_engine
}
