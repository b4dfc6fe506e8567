package trace

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
)

// Write encodes t in the textual format: capacity and length on the first
// line, then one key per line.
func Write(w io.Writer, t *Trace) error {
	bw := bufio.NewWriter(w)

	buf := make([]byte, 0, 24)
	writeInt := func(v int, sep byte) {
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		buf = append(buf, sep)
		_, _ = bw.Write(buf)
	}

	writeInt(t.Capacity, ' ')
	writeInt(len(t.Keys), '\n')
	for _, k := range t.Keys {
		writeInt(k, '\n')
	}

	// bufio.Writer keeps the first error and returns it on Flush
	return bw.Flush()
}

// WriteFile writes t to path, compressing it according to its extension.
func WriteFile(path string, t *Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w, err := NewWriter(f, CompressionFromPath(path))
	if err != nil {
		return err
	}

	if err := Write(w, t); err != nil {
		return err
	}
	return w.Close()
}
