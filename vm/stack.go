package vm

const (
	STACK_ALIGN     = 8       // Capacity is rounded up to a multiple of this many words.
	STACK_LIMIT     = 1 << 27 // Maximum stack capacity, in words.
	STACK_WORD_SIZE = 8       // Bytes per stack word.
)

// Stack is a fixed capacity word stack. The same words are byte addressable
// memory for sized loads and stores, little-endian within each word.
type Stack struct {
	data []uint64
	sp   uint64
}

// AlignN rounds size up to the next multiple of to.
func AlignN(size, to uint64) uint64 {
	if size%to == 0 {
		return size
	}
	return (size/to + 1) * to
}

// NewStack allocates a stack of at least capacity words. Capacities over
// STACK_LIMIT words (1 GiB) fail up front with ErrAllocationFailure,
// since Go cannot recover from a failed allocation.
func NewStack(capacity uint64) (s *Stack, err error) {
	if capacity > STACK_LIMIT {
		err = ErrAllocationFailure
		return
	}

	s = &Stack{
		data: make([]uint64, AlignN(capacity, STACK_ALIGN)),
	}

	return
}

// Cap returns the stack capacity in words.
func (s *Stack) Cap() uint64 {
	return uint64(len(s.data))
}

// Sp returns the stack pointer.
func (s *Stack) Sp() uint64 {
	return s.sp
}

func (s *Stack) Empty() bool {
	return s.sp == 0
}

func (s *Stack) Full() bool {
	return s.sp >= s.Cap()
}

// Push writes value at the stack pointer and advances it. A full stack is
// left untouched.
func (s *Stack) Push(value uint64) (ok bool) {
	if s.Full() {
		return
	}

	s.data[s.sp] = value
	s.sp++
	return true
}

// Pop returns the most recently pushed value.
func (s *Stack) Pop() (value uint64, err error) {
	if s.Empty() {
		err = ErrStackUnderflow
		return
	}

	s.sp--
	value = s.data[s.sp]
	return
}

// Peek returns the most recently pushed value without removing it.
func (s *Stack) Peek() (value uint64, ok bool) {
	if s.Empty() {
		return
	}

	return s.data[s.sp-1], true
}

// Get reads an allocated slot.
func (s *Stack) Get(index uint64) (value uint64, err error) {
	if index >= s.sp {
		err = ErrInvalidIndex(index)
		return
	}

	value = s.data[index]
	return
}

// SetN overwrites an allocated slot. Slot 0 is reserved.
func (s *Stack) SetN(index uint64, value uint64) (err error) {
	if index == 0 || index >= s.sp {
		err = ErrInvalidIndex(index)
		return
	}

	s.data[index] = value
	return
}

// Reserve advances the stack pointer by n words without initializing them.
func (s *Stack) Reserve(n uint64) (ok bool) {
	if n > s.Cap()-s.sp {
		return
	}

	s.sp += n
	return true
}

// Reset empties the stack and clears its memory.
func (s *Stack) Reset() {
	clear(s.data)
	s.sp = 0
}

// check verifies that [address, address+size) lies inside memory.
func (s *Stack) check(address int64, size DataSize) (err error) {
	limit := s.Cap() * STACK_WORD_SIZE
	bytes := uint64(size.Bytes())
	if address < 0 || uint64(address) > limit || bytes > limit-uint64(address) {
		err = ErrMemoryFault{Address: address, Size: size.Bytes()}
	}
	return
}

func (s *Stack) loadByte(address uint64) byte {
	return byte(s.data[address/STACK_WORD_SIZE] >> ((address % STACK_WORD_SIZE) * 8))
}

func (s *Stack) storeByte(address uint64, value byte) {
	word := &s.data[address/STACK_WORD_SIZE]
	shift := (address % STACK_WORD_SIZE) * 8
	*word = (*word &^ (0xff << shift)) | (uint64(value) << shift)
}

// Load reads size bytes at a byte address, zero-extended.
func (s *Stack) Load(address int64, size DataSize) (value uint64, err error) {
	err = s.check(address, size)
	if err != nil {
		return
	}

	base := uint64(address)
	if size == SIZE_64 && base%STACK_WORD_SIZE == 0 {
		value = s.data[base/STACK_WORD_SIZE]
		return
	}

	for n := range uint64(size.Bytes()) {
		value |= uint64(s.loadByte(base+n)) << (n * 8)
	}

	return
}

// Store writes the low size bytes of value at a byte address.
func (s *Stack) Store(address int64, size DataSize, value uint64) (err error) {
	err = s.check(address, size)
	if err != nil {
		return
	}

	base := uint64(address)
	if size == SIZE_64 && base%STACK_WORD_SIZE == 0 {
		s.data[base/STACK_WORD_SIZE] = value
		return
	}

	for n := range uint64(size.Bytes()) {
		s.storeByte(base+n, byte(value>>(n*8)))
	}

	return
}
