package binder

// List is the suggestion container: an ordered set of options that the
// binder clears and refills. Implementations need not be safe for
// concurrent use; the binder mutates them from one goroutine only.
type List interface {
	Clear()
	Append(option string)
	Options() []string
}

// MemoryList is a List backed by a slice.
type MemoryList struct {
	options []string
}

// NewMemoryList returns an empty list.
func NewMemoryList() *MemoryList {
	return &MemoryList{}
}

// Clear removes every option.
func (l *MemoryList) Clear() {
	l.options = l.options[:0]
}

// Append adds one option at the end.
func (l *MemoryList) Append(option string) {
	l.options = append(l.options, option)
}

// Options returns a copy of the current options.
func (l *MemoryList) Options() []string {
	return append([]string(nil), l.options...)
}
