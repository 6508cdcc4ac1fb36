package engine

import (
	"time"

	"github.com/Simplici0/mercury/internal/costing"
)

// State is the load state of the ingredients catalog. It is one of
// Uninitialized, Ready or FailedToLoad.
type State interface {
	// Name is a short machine-readable state name.
	Name() string
	isState()
}

// Uninitialized means no load has completed yet.
type Uninitialized struct{}

// Ready holds a successfully loaded catalog.
type Ready struct {
	Catalog  costing.Catalog
	Source   string
	LoadedAt time.Time
}

// FailedToLoad holds the error of the last load attempt.
type FailedToLoad struct {
	Err error
}

func (Uninitialized) Name() string { return "uninitialized" }
func (Ready) Name() string         { return "ready" }
func (FailedToLoad) Name() string  { return "failed" }

func (Uninitialized) isState() {}
func (Ready) isState()         {}
func (FailedToLoad) isState()  {}
