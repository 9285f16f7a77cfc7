package editor

type RegisterMode int

const (
	RegisterNormal RegisterMode = iota
	RegisterLinewise
	RegisterBlockwise
)

func (m RegisterMode) String() string {
	switch m {
	case RegisterLinewise:
		return "linewise"
	case RegisterBlockwise:
		return "blockwise"
	}
	return "normal"
}

// RegisterData is yanked or deleted text. Blockwise content holds one
// line per block row.
type RegisterData struct {
	Content string
	Mode    RegisterMode
}

const deleteRingSize = 10

// Register holds the unnamed register, the last yank and a ring of the
// last deletes.
type Register struct {
	Unnamed  RegisterData
	LastYank RegisterData

	deletes [deleteRingSize]RegisterData
	next    int
	count   int
}

func (r *Register) AddYank(d RegisterData) {
	r.Unnamed = d
	r.LastYank = d
}

func (r *Register) AddDelete(d RegisterData) {
	r.Unnamed = d
	r.deletes[r.next] = d
	r.next = (r.next + 1) % deleteRingSize
	r.count = min(r.count+1, deleteRingSize)
}

// Delete returns the i-th most recent delete, 0 being the newest.
func (r *Register) Delete(i int) (RegisterData, bool) {
	if i < 0 || i >= r.count {
		return RegisterData{}, false
	}
	idx := (r.next - 1 - i + deleteRingSize) % deleteRingSize
	return r.deletes[idx], true
}
