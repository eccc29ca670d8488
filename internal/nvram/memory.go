package nvram

// Memory is a volatile Device, used for tests and dry runs.
type Memory struct {
	data   []byte
	writes int
}

// NewMemory returns an erased in-memory device of the given size.
func NewMemory(size int) *Memory {
	return &Memory{data: erasedImage(size)}
}

func (m *Memory) Byte(addr int) byte {
	checkAddr(addr, len(m.data))
	return m.data[addr]
}

func (m *Memory) SetByte(addr int, v byte) {
	checkAddr(addr, len(m.data))
	m.data[addr] = v
	m.writes++
}

func (m *Memory) Size() int { return len(m.data) }

// Writes returns the number of SetByte calls so far.
func (m *Memory) Writes() int { return m.writes }

// Verify Memory implements Device at compile time.
var _ Device = (*Memory)(nil)
