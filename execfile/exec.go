// Package execfile reads and writes the fixed 512-byte-header Karma exec
// container: a code segment followed by a constants segment, both
// little-endian word streams.
package execfile

import (
	"encoding/binary"
	"os"
	"strings"

	"github.com/tigrkoshka/karma/specs"
)

// Data is the in-memory representation of a Karma executable, independent
// of its on-disk layout.
type Data struct {
	Entrypoint specs.Word
	InitialSP  specs.Word
	Code       []specs.Word
	Constants  []specs.Word
}

// Write serializes data to path, truncating any existing file. The write
// either fully succeeds or leaves a file that will fail header validation
// on the next Read: the header is written first and the body second, and
// if the body write fails the sizes declared in the header no longer
// match the file's length, so Read rejects it with InvalidExecSize.
func Write(path string, data Data) error {
	f, err := os.Create(path) // #nosec G304 -- path is operator-supplied, not attacker data
	if err != nil {
		return newError(FailedToOpen, path, "failed to open for writing", err)
	}
	defer f.Close()

	codeBytes := specs.Word(len(data.Code) * 4)
	constBytes := specs.Word(len(data.Constants) * 4)

	header := make([]byte, specs.HeaderSize)
	copy(header[specs.OffsetIntro:], specs.IntroString)
	// header[specs.OffsetIntro+len(IntroString)] stays 0, the trailing NUL.
	binary.LittleEndian.PutUint32(header[specs.OffsetCodeBytes:], codeBytes)
	binary.LittleEndian.PutUint32(header[specs.OffsetConstBytes:], constBytes)
	binary.LittleEndian.PutUint32(header[specs.OffsetEntrypoint:], data.Entrypoint)
	binary.LittleEndian.PutUint32(header[specs.OffsetInitialSP:], specs.MemorySize-1)
	binary.LittleEndian.PutUint32(header[specs.OffsetProcessorID:], specs.ProcessorID)
	for i := specs.MetaInfoEndPos; i < specs.HeaderSize; i++ {
		header[i] = '0'
	}

	if _, err := f.Write(header); err != nil {
		return newError(FailedToOpen, path, "failed to write header", err)
	}

	body := make([]byte, (len(data.Code)+len(data.Constants))*4)
	for i, w := range data.Code {
		binary.LittleEndian.PutUint32(body[i*4:], w)
	}
	off := len(data.Code) * 4
	for i, w := range data.Constants {
		binary.LittleEndian.PutUint32(body[off+i*4:], w)
	}

	if _, err := f.Write(body); err != nil {
		return newError(FailedToOpen, path, "failed to write body", err)
	}

	return nil
}

// Read parses a Karma exec container from path, validating the header
// exactly as the original toolchain does.
func Read(path string) (Data, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied, not attacker data
	if err != nil {
		return Data{}, newError(FailedToOpen, path, "failed to open for reading", err)
	}

	if len(raw) < specs.HeaderSize {
		return Data{}, newError(TooSmallForHeader, path, "file shorter than header", nil)
	}

	if len(raw)-specs.HeaderSize > specs.MemorySize*4 {
		return Data{}, newError(TooBigForMemory, path, "body exceeds memory capacity", nil)
	}

	intro := raw[specs.OffsetIntro : specs.OffsetIntro+specs.IntroSize]
	if intro[specs.IntroSize-1] != 0 {
		return Data{}, newError(NoTrailingZeroInIntro, path, "intro string not NUL-terminated", nil)
	}
	if string(intro[:specs.IntroSize-1]) != specs.IntroString {
		return Data{}, newError(InvalidIntroString, path,
			"intro string mismatch: got "+strings.TrimRight(string(intro), "\x00"), nil)
	}

	codeBytes := binary.LittleEndian.Uint32(raw[specs.OffsetCodeBytes:])
	constBytes := binary.LittleEndian.Uint32(raw[specs.OffsetConstBytes:])
	entrypoint := binary.LittleEndian.Uint32(raw[specs.OffsetEntrypoint:])
	initialSP := binary.LittleEndian.Uint32(raw[specs.OffsetInitialSP:])
	processorID := binary.LittleEndian.Uint32(raw[specs.OffsetProcessorID:])

	if specs.Word(len(raw)) != specs.HeaderSize+codeBytes+constBytes {
		return Data{}, newError(InvalidExecSize, path, "declared sizes do not match file size", nil)
	}

	if processorID != specs.ProcessorID {
		return Data{}, newError(InvalidProcessorID, path,
			"processor id mismatch: expected 239", nil)
	}

	body := raw[specs.HeaderSize:]
	code := make([]specs.Word, codeBytes/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(body[i*4:])
	}
	constants := make([]specs.Word, constBytes/4)
	off := int(codeBytes)
	for i := range constants {
		constants[i] = binary.LittleEndian.Uint32(body[off+i*4:])
	}

	return Data{
		Entrypoint: entrypoint,
		InitialSP:  initialSP,
		Code:       code,
		Constants:  constants,
	}, nil
}
