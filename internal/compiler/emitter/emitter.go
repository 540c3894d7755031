// Package emitter writes the finished instruction stream to an object
// file in the TAM loader format: four big-endian 32-bit words per
// instruction, in emission order.
package emitter

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/tam"
)

// WriteObjectFile serializes the instruction sequence to path. The bytes
// out match the instructions in, in order; nothing is transformed.
func WriteObjectFile(path string, code []tam.Instruction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating object file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, instr := range code {
		words := [4]int32{int32(instr.Op), int32(instr.R), int32(instr.N), int32(instr.D)}
		if err := binary.Write(w, binary.BigEndian, words[:]); err != nil {
			return fmt.Errorf("writing object file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing object file: %w", err)
	}
	return f.Close()
}
