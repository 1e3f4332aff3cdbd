// Package export writes the directory in forms other tools consume: a
// SQLite database for the dashboard and plain id lists.
package export

import (
	"bufio"
	"io"
)

// WriteIDs writes one id per line.
func WriteIDs(w io.Writer, ids []string) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := bw.WriteString(id + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
