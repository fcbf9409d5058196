package llm

import "bytes"

// LineDecoder splits a byte stream into newline-terminated lines. An incomplete
// trailing fragment is retained until a later Write completes it, so a
// multi-byte character split across reads is never decoded in halves.
type LineDecoder struct {
	buf []byte
}

// Write appends p and returns every line it completed, without the terminator.
// A trailing carriage return is dropped.
func (d *LineDecoder) Write(p []byte) []string {
	d.buf = append(d.buf, p...)

	var lines []string
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(d.buf[:i], []byte{'\r'})))
		d.buf = d.buf[i+1:]
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return lines
}

// Flush returns the pending fragment, if any, and resets the decoder.
func (d *LineDecoder) Flush() (string, bool) {
	if len(d.buf) == 0 {
		return "", false
	}
	rest := string(bytes.TrimSuffix(d.buf, []byte{'\r'}))
	d.buf = nil
	return rest, true
}

// Pending reports the number of buffered bytes not yet returned as a line.
func (d *LineDecoder) Pending() int {
	return len(d.buf)
}
