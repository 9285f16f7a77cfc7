package editor

import (
	"github.com/google/uuid"

	"github.com/kobzarvs/qdoc/internal/buffer"
)

type ViewID uuid.UUID

func NewViewID() ViewID { return ViewID(uuid.New()) }

func (id ViewID) String() string { return uuid.UUID(id).String() }

// View shows one buffer. Several views may share a buffer; each keeps its
// own cursor and scroll position and refers to the buffer by id only.
type View struct {
	id     ViewID
	buffer buffer.ID
	Cursor Cursor
	Top    int
}

func (v *View) ID() ViewID          { return v.id }
func (v *View) BufferID() buffer.ID { return v.buffer }

// Follow scrolls so that line is visible in a window of height lines.
func (v *View) Follow(line, height int) {
	if height <= 0 {
		return
	}
	if line < v.Top {
		v.Top = line
	}
	if line >= v.Top+height {
		v.Top = line - height + 1
	}
	v.Top = max(v.Top, 0)
}
