package pipeline

import (
	"github.com/dejargonator/dejargonator/internal/models"
)

// Renderer consumes a read-only snapshot after every in-memory phase of an
// operation, both optimistic and confirmed. Presentation is entirely its
// concern; the manager only says which stages changed.
type Renderer interface {
	Render(snap Snapshot, changed ...models.Stage)
}

// NopRenderer ignores every render request.
type NopRenderer struct{}

func (NopRenderer) Render(Snapshot, ...models.Stage) {}
