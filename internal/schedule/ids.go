package schedule

import "github.com/google/uuid"

// IDGenerator hands out identifiers for new events and resources.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDs generates random (version 4) UUID strings.
var UUIDs IDGenerator = IDFunc(uuid.NewString)
