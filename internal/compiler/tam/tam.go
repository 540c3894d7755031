// Package tam holds the constants of the Triangle Abstract Machine: its
// instruction set, register numbers, primitive-routine displacements, and
// frame layout. Everything the encoder and the object writer know about
// the target lives here.
package tam

import "fmt"

// Opcodes.
const (
	LOADop   = 0
	LOADAop  = 1
	LOADIop  = 2
	LOADLop  = 3
	STOREop  = 4
	STOREIop = 5
	CALLop   = 6
	CALLIop  = 7
	RETURNop = 8
	PUSHop   = 10
	POPop    = 11
	JUMPop   = 12
	JUMPIop  = 13
	JUMPIFop = 14
	HALTop   = 15
)

// Register numbers.
const (
	CBr = 0  // code base
	CTr = 1  // code top
	PBr = 2  // primitives base
	PTr = 3  // primitives top
	SBr = 4  // stack base
	STr = 5  // stack top
	HBr = 6  // heap base
	HTr = 7  // heap top
	LBr = 8  // local base
	L1r = 9  // LB of enclosing frame
	L2r = 10
	L3r = 11
	L4r = 12
	L5r = 13
	L6r = 14
	CPr = 15 // code pointer
)

// Displacements of the primitive routines, relative to PB.
const (
	IDDispl      = 1
	NotDispl     = 2
	AndDispl     = 3
	OrDispl      = 4
	SuccDispl    = 5
	PredDispl    = 6
	NegDispl     = 7
	AddDispl     = 8
	SubDispl     = 9
	MultDispl    = 10
	DivDispl     = 11
	ModDispl     = 12
	LtDispl      = 13
	LeDispl      = 14
	GeDispl      = 15
	GtDispl      = 16
	EqDispl      = 17
	NeDispl      = 18
	EolDispl     = 19
	EofDispl     = 20
	GetDispl     = 21
	PutDispl     = 22
	GeteolDispl  = 23
	PuteolDispl  = 24
	GetintDispl  = 25
	PutintDispl  = 26
	NewDispl     = 27
	DisposeDispl = 28
)

// Frame layout.
const (
	LinkDataSize    = 3 // static link, dynamic link, return address
	ClosureSize     = 2 // static link + code address
	MaxRoutineLevel = 7

	TrueValue   = 1
	FalseValue  = 0
	MaxintValue = 32767
)

// Instruction is one TAM instruction word: operation, register field,
// length field, and operand.
type Instruction struct {
	Op int
	R  int
	N  int
	D  int
}

var mnemonics = map[int]string{
	LOADop:   "LOAD",
	LOADAop:  "LOADA",
	LOADIop:  "LOADI",
	LOADLop:  "LOADL",
	STOREop:  "STORE",
	STOREIop: "STOREI",
	CALLop:   "CALL",
	CALLIop:  "CALLI",
	RETURNop: "RETURN",
	PUSHop:   "PUSH",
	POPop:    "POP",
	JUMPop:   "JUMP",
	JUMPIop:  "JUMPI",
	JUMPIFop: "JUMPIF",
	HALTop:   "HALT",
}

var registerNames = map[int]string{
	CBr: "CB", CTr: "CT", PBr: "PB", PTr: "PT",
	SBr: "SB", STr: "ST", HBr: "HB", HTr: "HT",
	LBr: "LB", L1r: "L1", L2r: "L2", L3r: "L3",
	L4r: "L4", L5r: "L5", L6r: "L6", CPr: "CP",
}

// String renders the instruction in listing form, e.g. "LOAD(1) 2[LB]".
func (i Instruction) String() string {
	mn, ok := mnemonics[i.Op]
	if !ok {
		mn = fmt.Sprintf("OP%d", i.Op)
	}
	switch i.Op {
	case HALTop:
		return mn
	case LOADLop:
		return fmt.Sprintf("%s %d", mn, i.D)
	case LOADIop, STOREIop, CALLIop:
		return fmt.Sprintf("%s(%d)", mn, i.N)
	case PUSHop:
		return fmt.Sprintf("%s %d", mn, i.D)
	case RETURNop, POPop:
		return fmt.Sprintf("%s(%d) %d", mn, i.N, i.D)
	case JUMPop:
		return fmt.Sprintf("%s %d[%s]", mn, i.D, registerNames[i.R])
	case JUMPIFop:
		return fmt.Sprintf("%s(%d) %d[%s]", mn, i.N, i.D, registerNames[i.R])
	case CALLop:
		return fmt.Sprintf("%s(%s) %d[%s]", mn, registerNames[i.N], i.D, registerNames[i.R])
	default:
		return fmt.Sprintf("%s(%d) %d[%s]", mn, i.N, i.D, registerNames[i.R])
	}
}
