package game

import (
	"fmt"

	"github.com/pthm-cable/benchmarker/bench"
)

// Benchmarked method ids.
var (
	MethodIntegrate       = bench.IDFor("game.IntegrateSystem.Update")
	MethodIntegrateMapped = bench.IDFor("game.IntegrateMappedSystem.Update")
	MethodBounds          = bench.IDFor("game.BoundsSystem.Update")
	MethodAge             = bench.IDFor("game.AgeSystem.Update")
)

// Categories the systems are grouped under.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategoryLifetime = "lifetime"
)

// Methods describes every instrumented system.
func Methods() []bench.MethodMetadata {
	return []bench.MethodMetadata{
		{
			ID:          MethodIntegrate,
			FullName:    "game.IntegrateSystem.Update",
			DisplayName: "Integrate",
			Description: "filter query over position and velocity",
			Categories:  []string{CategoryMovement},
			Baseline:    true,
		},
		{
			ID:          MethodIntegrateMapped,
			FullName:    "game.IntegrateMappedSystem.Update",
			DisplayName: "IntegrateMapped",
			Description: "per-entity component lookups",
			Categories:  []string{CategoryMovement},
		},
		{
			ID:          MethodBounds,
			FullName:    "game.BoundsSystem.Update",
			DisplayName: "Bounds",
			Description: "reflect particles at the world edges",
			Categories:  []string{CategoryWorld},
			Baseline:    true,
		},
		{
			ID:          MethodAge,
			FullName:    "game.AgeSystem.Update",
			DisplayName: "Age",
			Description: "age particles and respawn expired ones",
			Categories:  []string{CategoryWorld, CategoryLifetime},
		},
	}
}

// RegisterMethods adds every instrumented system to reg.
func RegisterMethods(reg *bench.Registry) error {
	for _, m := range Methods() {
		if err := reg.Register(m); err != nil {
			return fmt.Errorf("registering %s: %w", m.FullName, err)
		}
	}
	return nil
}
