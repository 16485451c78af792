package spirv

import (
	"encoding/binary"
	"unicode/utf8"
)

// Header is the five-word preamble of a SPIR-V module.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Instruction is the decoded first word of an instruction.
type Instruction struct {
	Op        OpCode
	WordCount uint16
}

// Expect checks that the instruction has exactly count words.
func (inst Instruction) Expect(count uint16) error {
	if inst.WordCount != count {
		return newError(ErrInvalidOperandCount, "%v has %d words, expected %d", inst.Op, inst.WordCount, count)
	}
	return nil
}

// ExpectAtLeast checks that the instruction has at least count words.
func (inst Instruction) ExpectAtLeast(count uint16) error {
	if inst.WordCount < count {
		return newError(ErrInvalidOperandCount, "%v has %d words, expected at least %d", inst.Op, inst.WordCount, count)
	}
	return nil
}

// BytesToWords reinterprets little-endian bytes as SPIR-V words.
func BytesToWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, newError(ErrIncompleteData, "%d bytes is not a whole number of words", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// Decoder reads words and instructions from an in-memory module.
type Decoder struct {
	words []uint32
	pos   int
	start int // offset of the instruction being decoded
}

// NewDecoder returns a decoder positioned at the first header word.
func NewDecoder(words []uint32) *Decoder {
	return &Decoder{words: words}
}

// Offset returns the word offset of the next word to be read.
func (d *Decoder) Offset() int { return d.pos }

// InstructionOffset returns the word offset of the current instruction.
func (d *Decoder) InstructionOffset() int { return d.start }

// Done reports whether every word has been consumed.
func (d *Decoder) Done() bool { return d.pos >= len(d.words) }

// Next reads one word.
func (d *Decoder) Next() (uint32, error) {
	if d.pos >= len(d.words) {
		return 0, newError(ErrIncompleteData, "stream ends at word %d", d.pos)
	}
	w := d.words[d.pos]
	d.pos++
	return w, nil
}

// NextN reads n words.
func (d *Decoder) NextN(n int) ([]uint32, error) {
	if n < 0 || d.pos+n > len(d.words) {
		return nil, newError(ErrIncompleteData, "need %d words at word %d, have %d", n, d.pos, len(d.words)-d.pos)
	}
	out := d.words[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

// Skip discards n words.
func (d *Decoder) Skip(n int) error {
	_, err := d.NextN(n)
	return err
}

// Header reads and validates the module header.
func (d *Decoder) Header() (Header, error) {
	if len(d.words) < HeaderWords {
		return Header{}, newError(ErrIncompleteData, "module has %d words, header needs %d", len(d.words), HeaderWords)
	}
	if d.words[0] != MagicNumber {
		return Header{}, newError(ErrInvalidHeader, "bad magic number 0x%08x", d.words[0])
	}
	h := Header{
		Version:   VersionFromWord(d.words[1]),
		Generator: d.words[2],
		Bound:     d.words[3],
		Schema:    d.words[4],
	}
	d.pos = HeaderWords
	return h, nil
}

// NextInstruction decodes the first word of the next instruction.
// Opcodes without an entry in the opcode table are rejected.
func (d *Decoder) NextInstruction() (Instruction, error) {
	d.start = d.pos
	w, err := d.Next()
	if err != nil {
		return Instruction{}, err
	}
	inst := Instruction{Op: OpCode(w & 0xffff), WordCount: uint16(w >> 16)}
	if inst.WordCount == 0 {
		return Instruction{}, d.errorf(ErrInvalidWordCount, "instruction with zero word count")
	}
	if !inst.Op.Known() {
		return Instruction{}, d.errorf(ErrUnknownInstruction, "unknown opcode %d", uint16(inst.Op))
	}
	if d.start+int(inst.WordCount) > len(d.words) {
		return Instruction{}, d.errorf(ErrIncompleteData, "%v needs %d words, stream has %d left",
			inst.Op, inst.WordCount, len(d.words)-d.start)
	}
	return inst, nil
}

// NextString reads a NUL-terminated UTF-8 literal occupying at most
// maxWords words. It returns the string and the number of words used.
func (d *Decoder) NextString(maxWords int) (string, int, error) {
	if maxWords > len(d.words)-d.pos {
		maxWords = len(d.words) - d.pos
	}
	s, used, err := DecodeString(d.words[d.pos : d.pos+maxWords])
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Offset = d.start
		}
		return "", 0, err
	}
	d.pos += used
	return s, used, nil
}

// Operands reads every remaining operand word of inst.
func (d *Decoder) Operands(inst Instruction) ([]uint32, error) {
	return d.NextN(d.Remaining(inst))
}

// DecodeString decodes the literal string at the start of words and
// returns it with the number of words it occupies.
func DecodeString(words []uint32) (string, int, error) {
	buf := make([]byte, 0, 16)
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				if !utf8.Valid(buf) {
					return "", 0, newError(ErrBadString, "literal string is not valid UTF-8")
				}
				return string(buf), i + 1, nil
			}
			buf = append(buf, b)
		}
	}
	return "", 0, newError(ErrBadString, "literal string is not NUL-terminated within %d words", len(words))
}

func (d *Decoder) errorf(kind ErrorKind, format string, args ...any) *Error {
	e := newError(kind, format, args...)
	e.Offset = d.start
	return e
}

// Remaining returns the number of unread operand words of inst.
func (d *Decoder) Remaining(inst Instruction) int {
	return d.start + int(inst.WordCount) - d.pos
}

// Finish positions the decoder after inst, discarding operands the handler
// did not read. Reading past the declared word count is an error.
func (d *Decoder) Finish(inst Instruction) error {
	end := d.start + int(inst.WordCount)
	if d.pos > end {
		return d.errorf(ErrInvalidOperandCount, "%v read %d words past its word count", inst.Op, d.pos-end)
	}
	d.pos = end
	return nil
}
