package main

import (
	"bufio"
	"fmt"
	"io"
)

// writeHex writes each row on its own line as space separated two digit
// uppercase hex values.
func writeHex(w io.Writer, rows [][]byte) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for i, tile := range row {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%02X", tile); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
