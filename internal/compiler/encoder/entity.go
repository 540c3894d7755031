package encoder

// Runtime entities: what the encoder records about each declared thing.
// They live in the declaration nodes' Entity slots, written once during
// code generation.

// Address is a (static level, displacement) pair: lexical nesting depth
// of the owning frame and the offset within it.
type Address struct {
	Level int
	Displ int
}

// KnownValue is a constant whose value is known at compile time; no
// storage is allocated for it.
type KnownValue struct {
	Size  int
	Value int
}

// UnknownValue is a constant evaluated at runtime and stored in the
// frame.
type UnknownValue struct {
	Size int
	Addr Address
}

// KnownAddress is a variable's storage slot.
type KnownAddress struct {
	Size int
	Addr Address
}

// UnknownAddress is a slot that holds an address at runtime: a var
// parameter.
type UnknownAddress struct {
	Size int
	Addr Address
}

// KnownRoutine is a declared procedure or function: the level it was
// declared at and the code address of its body.
type KnownRoutine struct {
	Addr Address // Displ is the entry point's instruction address
}
