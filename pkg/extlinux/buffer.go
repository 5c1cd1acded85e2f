package extlinux

// Buffer owns the raw contents of an extlinux.conf file. The backing array
// is one byte longer than the file so that a final directive without a
// trailing newline can still be terminated in place.
type Buffer struct {
	data []byte
	size int
}

// NewBuffer allocates a Buffer for a file of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		data: make([]byte, size+1),
		size: size,
	}
}

// BufferFromBytes copies raw into a freshly allocated Buffer.
func BufferFromBytes(raw []byte) *Buffer {
	b := NewBuffer(len(raw))
	copy(b.data, raw)
	return b
}

// Data returns the file region of the buffer, without the reserved byte.
// Callers read the file into it before parsing.
func (b *Buffer) Data() []byte {
	b.mustBeLive()
	return b.data[:b.size]
}

// Len returns the size of the file region.
func (b *Buffer) Len() int {
	return b.size
}

// Release drops the backing array. Spans parsed from the buffer cannot be
// resolved afterwards.
func (b *Buffer) Release() {
	b.data = nil
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b.data == nil
}

// String copies the bytes covered by s out of the buffer.
func (b *Buffer) String(s Span) string {
	b.mustBeLive()
	if !s.set {
		return ""
	}
	return string(b.data[s.start:s.end])
}

func (b *Buffer) bytes(s Span) []byte {
	b.mustBeLive()
	return b.data[s.start:s.end]
}

func (b *Buffer) mustBeLive() {
	if b.data == nil {
		panic("extlinux: buffer used after release")
	}
}

// Span is a borrowed view into a Buffer. The zero Span is unset.
type Span struct {
	start int
	end   int
	set   bool
}

// IsSet reports whether the span was assigned by a directive.
func (s Span) IsSet() bool {
	return s.set
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.end - s.start
}
