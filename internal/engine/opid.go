package engine

import (
	"github.com/google/uuid"
	"github.com/vk/amdgo/internal/record"
)

// OpIDFunc allocates load-operation ids. Ids must be unique for the life of
// the runtime.
type OpIDFunc func() record.OpID

// NewOpID is the default allocator.
func NewOpID() record.OpID {
	return record.OpID(uuid.NewString())
}
