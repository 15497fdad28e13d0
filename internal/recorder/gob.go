package recorder

import (
	"encoding/gob"
	"io"
)

// persist gob-encodes rec to w. gob is the same wire format the
// teacher's ipc package frames over Unix sockets, so a Recording can be
// handed to internal/ipc for transport without a second serialization
// step.
func persist(w io.Writer, rec Recording) error {
	return gob.NewEncoder(w).Encode(rec)
}
