package header

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Parse decodes header JSON into the root directory.
//
// The stdlib json package does not preserve object key order, so the codec
// walks the token stream directly: children come back in document order,
// which is the order the writer streamed their contents in.
func Parse(data []byte) (*Directory, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	entry, err := parseEntry(dec)
	if err != nil {
		return nil, err
	}
	root, ok := entry.(*Directory)
	if !ok {
		return nil, fmt.Errorf("%w: root is not a directory", ErrInvalidHeader)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after root object", ErrInvalidHeader)
	}
	return root, nil
}

// Serialize encodes the tree back to header JSON, re-encoding offsets and
// sizes as decimal strings and integers and preserving child order.
func Serialize(root *Directory) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDir(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseEntry decodes one tree node. The node kind is decided here, once, by
// field presence: a "files" field makes a directory, a "size" field without
// one makes a file, anything else is shapeless.
func parseEntry(dec *json.Decoder) (Entry, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var (
		files     *Directory
		size      uint64
		sizeSet   bool
		offset    uint64
		offsetSet bool
		exec      bool
		unpacked  bool
		integrity *Integrity
	)

	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "files":
			if files, err = parseFiles(dec); err != nil {
				return nil, err
			}
		case "size":
			num, err := numberToken(dec)
			if err != nil {
				return nil, err
			}
			if size, err = strconv.ParseUint(num.String(), 10, 64); err != nil {
				return nil, fmt.Errorf("%w: size %q", ErrInvalidHeader, num.String())
			}
			sizeSet = true
		case "offset":
			s, err := stringToken(dec)
			if err != nil {
				return nil, err
			}
			if offset, err = strconv.ParseUint(s, 10, 64); err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
			}
			offsetSet = true
		case "executable":
			if exec, err = boolToken(dec); err != nil {
				return nil, err
			}
		case "unpacked":
			if unpacked, err = boolToken(dec); err != nil {
				return nil, err
			}
		case "integrity":
			if integrity, err = parseIntegrity(dec); err != nil {
				return nil, err
			}
		default:
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	if files != nil {
		return files, nil
	}
	if !sizeSet {
		return nil, fmt.Errorf("%w: node is neither directory nor file", ErrInvalidHeader)
	}
	switch {
	case offsetSet && unpacked:
		return nil, fmt.Errorf("%w: got both offset and unpacked", ErrInvalidHeader)
	case !offsetSet && !unpacked:
		return nil, fmt.Errorf("%w: file missing offset", ErrInvalidHeader)
	}
	return &File{
		Size:       size,
		Offset:     offset,
		Executable: exec,
		Unpacked:   unpacked,
		Integrity:  integrity,
	}, nil
}

// parseFiles decodes the ordered name→entry mapping of a directory.
func parseFiles(dec *json.Decoder) (*Directory, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	dir := NewDirectory()
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		child, err := parseEntry(dec)
		if err != nil {
			return nil, err
		}
		if err := dir.Add(name, child); err != nil {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidHeader, name)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return dir, nil
}

// parseIntegrity decodes the integrity object of a file entry.
func parseIntegrity(dec *json.Decoder) (*Integrity, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	integ := &Integrity{}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "algorithm":
			if integ.Algorithm, err = stringToken(dec); err != nil {
				return nil, err
			}
			if integ.Algorithm != AlgorithmSHA256 {
				return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidHeader, integ.Algorithm)
			}
		case "hash":
			if integ.Hash, err = stringToken(dec); err != nil {
				return nil, err
			}
		case "blockSize":
			num, err := numberToken(dec)
			if err != nil {
				return nil, err
			}
			blockSize, err := strconv.ParseUint(num.String(), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: blockSize %q", ErrInvalidHeader, num.String())
			}
			integ.BlockSize = uint32(blockSize)
		case "blocks":
			if err := expectDelim(dec, '['); err != nil {
				return nil, err
			}
			for dec.More() {
				block, err := stringToken(dec)
				if err != nil {
					return nil, err
				}
				integ.Blocks = append(integ.Blocks, block)
			}
			if err := expectDelim(dec, ']'); err != nil {
				return nil, err
			}
		default:
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return integ, nil
}

func writeEntry(buf *bytes.Buffer, entry Entry) error {
	switch e := entry.(type) {
	case *Directory:
		return writeDir(buf, e)
	case *File:
		return writeFile(buf, e)
	default:
		return fmt.Errorf("%w: unknown entry type %T", ErrInvalidHeader, entry)
	}
}

func writeDir(buf *bytes.Buffer, dir *Directory) error {
	buf.WriteString(`{"files":{`)
	first := true
	for name, child := range dir.Entries() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		quoted, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(quoted)
		buf.WriteByte(':')
		if err := writeEntry(buf, child); err != nil {
			return err
		}
	}
	buf.WriteString("}}")
	return nil
}

func writeFile(buf *bytes.Buffer, f *File) error {
	buf.WriteString(`{"size":`)
	buf.WriteString(strconv.FormatUint(f.Size, 10))
	if f.Unpacked {
		buf.WriteString(`,"unpacked":true`)
	} else {
		buf.WriteString(`,"offset":"`)
		buf.WriteString(strconv.FormatUint(f.Offset, 10))
		buf.WriteByte('"')
	}
	if f.Executable {
		buf.WriteString(`,"executable":true`)
	}
	if f.Integrity != nil {
		buf.WriteString(`,"integrity":`)
		if err := writeIntegrity(buf, f.Integrity); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeIntegrity(buf *bytes.Buffer, integ *Integrity) error {
	buf.WriteString(`{"algorithm":`)
	if err := writeQuoted(buf, integ.Algorithm); err != nil {
		return err
	}
	buf.WriteString(`,"hash":`)
	if err := writeQuoted(buf, integ.Hash); err != nil {
		return err
	}
	buf.WriteString(`,"blockSize":`)
	buf.WriteString(strconv.FormatUint(uint64(integ.BlockSize), 10))
	buf.WriteString(`,"blocks":[`)
	for i, block := range integ.Blocks {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeQuoted(buf, block); err != nil {
			return err
		}
	}
	buf.WriteString("]}")
	return nil
}

func writeQuoted(buf *bytes.Buffer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(quoted)
	return nil
}

// Token helpers. Every mismatch is an invalid header; the wire layer already
// guaranteed valid UTF-8.

func expectDelim(dec *json.Decoder, want rune) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if d, ok := tok.(json.Delim); !ok || rune(d) != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrInvalidHeader, want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %v", ErrInvalidHeader, tok)
	}
	return s, nil
}

func numberToken(dec *json.Decoder) (json.Number, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	num, ok := tok.(json.Number)
	if !ok {
		return "", fmt.Errorf("%w: expected number, got %v", ErrInvalidHeader, tok)
	}
	return num, nil
}

func boolToken(dec *json.Decoder) (bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	b, ok := tok.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %v", ErrInvalidHeader, tok)
	}
	return b, nil
}

// skipValue consumes one JSON value of any shape, tracking nesting depth.
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}
