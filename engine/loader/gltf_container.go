package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Binary container (GLB) layout constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic               uint32 = 0x46546C67 // "glTF"
	glbChunkJSON           uint32 = 0x4E4F534A // "JSON"
	glbChunkBIN            uint32 = 0x004E4942 // "BIN\0"
	glbHeaderLength               = 12
	glbChunkHeaderLength          = 8
	glbV1HeaderLength             = 20
	glbV1ContentFormatJSON        = 0
)

// Container is the decoded envelope of a binary glTF file.
type Container struct {
	// Version is the container header version (1 or 2).
	Version uint32

	// Length is the total length declared by the header.
	Length uint32

	// JSON is the document text.
	JSON []byte

	// Bin is the embedded binary payload, nil when absent. It aliases the input slice.
	Bin []byte

	// Warnings lists non-fatal oddities met while reading (skipped chunks, trailing bytes).
	Warnings []string
}

// IsBinaryContainer reports whether data starts with the binary container magic.
//
// Parameters:
//   - data: the raw file bytes
//
// Returns:
//   - bool: true if the magic matches
func IsBinaryContainer(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic
}

// ReadContainer decodes a binary container. Version 2 containers are read chunk by chunk;
// version 1 containers carry a single JSON content block followed by the binary body.
//
// Parameters:
//   - data: the raw file bytes
//
// Returns:
//   - *Container: the decoded container
//   - error: a MalformedContainerError if the header or chunk layout is invalid
func ReadContainer(data []byte) (*Container, error) {
	if len(data) < glbHeaderLength {
		return nil, &MalformedContainerError{Reason: fmt.Sprintf("data too short for header: %d bytes", len(data))}
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != glbMagic {
		return nil, &MalformedContainerError{Reason: fmt.Sprintf("unexpected magic: 0x%08X", magic)}
	}

	c := &Container{
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  binary.LittleEndian.Uint32(data[8:12]),
	}

	if uint64(c.Length) > uint64(len(data)) {
		return nil, &MalformedContainerError{Reason: fmt.Sprintf("length in header (%d) exceeds data length (%d)", c.Length, len(data))}
	}
	if int(c.Length) < len(data) {
		c.Warnings = append(c.Warnings, fmt.Sprintf("length in header (%d) is less than data length (%d); trailing bytes ignored", c.Length, len(data)))
	}
	body := data[:c.Length]

	switch c.Version {
	case 1:
		if err := c.readV1(body); err != nil {
			return nil, err
		}
	case 2:
		if err := c.readV2(body); err != nil {
			return nil, err
		}
	default:
		return nil, &UnsupportedVersionError{Version: fmt.Sprintf("%d", c.Version), Reason: "unsupported binary container version"}
	}

	return c, nil
}

// readV1 decodes [contentLength][contentFormat][content][body].
func (c *Container) readV1(data []byte) error {
	if len(data) < glbV1HeaderLength {
		return &MalformedContainerError{Reason: "data too short for version 1 header"}
	}

	contentLength := binary.LittleEndian.Uint32(data[12:16])
	contentFormat := binary.LittleEndian.Uint32(data[16:20])
	if contentFormat != glbV1ContentFormatJSON {
		return &MalformedContainerError{Reason: fmt.Sprintf("unexpected content format: %d", contentFormat)}
	}

	end := uint64(glbV1HeaderLength) + uint64(contentLength)
	if end > uint64(len(data)) {
		return &MalformedContainerError{Reason: fmt.Sprintf("content length (%d) exceeds container length", contentLength)}
	}

	c.JSON = data[glbV1HeaderLength:end]
	if int(end) < len(data) {
		c.Bin = data[end:]
	}
	return nil
}

// readV2 decodes [chunkLength][chunkType][chunkData]... with a mandatory leading JSON chunk.
func (c *Container) readV2(data []byte) error {
	offset := glbHeaderLength
	first := true

	for offset < len(data) {
		if len(data)-offset < glbChunkHeaderLength {
			return &MalformedContainerError{Reason: fmt.Sprintf("truncated chunk header at offset %d", offset)}
		}

		chunkLength := binary.LittleEndian.Uint32(data[offset : offset+4])
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		start := offset + glbChunkHeaderLength
		end := uint64(start) + uint64(chunkLength)
		if end > uint64(len(data)) {
			return &MalformedContainerError{Reason: fmt.Sprintf("chunk at offset %d overruns container length", offset)}
		}
		chunk := data[start:end]

		if first && chunkType != glbChunkJSON {
			return &MalformedContainerError{Reason: "first chunk must be JSON"}
		}
		first = false

		switch chunkType {
		case glbChunkJSON:
			if c.JSON != nil {
				c.Warnings = append(c.Warnings, fmt.Sprintf("duplicate JSON chunk at offset %d ignored", offset))
				break
			}
			c.JSON = chunk
		case glbChunkBIN:
			if c.Bin != nil {
				c.Warnings = append(c.Warnings, fmt.Sprintf("duplicate BIN chunk at offset %d ignored", offset))
				break
			}
			c.Bin = chunk
		default:
			c.Warnings = append(c.Warnings, fmt.Sprintf("unexpected chunk type 0x%08X at offset %d skipped", chunkType, offset))
		}

		offset = int(end)
	}

	if c.JSON == nil {
		return &MalformedContainerError{Reason: "missing JSON chunk"}
	}
	return nil
}

// WriteContainer encodes a version 2 binary container. The JSON chunk is padded with spaces
// and the BIN chunk with zeros to 4-byte boundaries; an empty bin omits the BIN chunk.
//
// Parameters:
//   - json: the document text
//   - bin: the binary payload, may be nil
//
// Returns:
//   - []byte: the encoded container
func WriteContainer(json, bin []byte) []byte {
	jsonPadded := padTo4(json, ' ')
	total := glbHeaderLength + glbChunkHeaderLength + len(jsonPadded)

	var binPadded []byte
	if len(bin) > 0 {
		binPadded = padTo4(bin, 0)
		total += glbChunkHeaderLength + len(binPadded)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	writeUint32(&buf, glbMagic)
	writeUint32(&buf, 2)
	writeUint32(&buf, uint32(total))

	writeUint32(&buf, uint32(len(jsonPadded)))
	writeUint32(&buf, glbChunkJSON)
	buf.Write(jsonPadded)

	if binPadded != nil {
		writeUint32(&buf, uint32(len(binPadded)))
		writeUint32(&buf, glbChunkBIN)
		buf.Write(binPadded)
	}

	return buf.Bytes()
}

// --- Helper Functions ---

func padTo4(b []byte, pad byte) []byte {
	n := len(b)
	rem := (4 - n%4) % 4
	out := make([]byte, n+rem)
	copy(out, b)
	for i := n; i < len(out); i++ {
		out[i] = pad
	}
	return out
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}
