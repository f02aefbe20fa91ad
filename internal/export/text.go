package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
)

// WriteText streams the selection as tab-delimited text, one line per
// record.
func (f *Formatter) WriteText(w io.Writer, companies []models.EnrichedCompany, base string) error {
	bw := bufio.NewWriter(w)
	for _, row := range f.Rows(companies, base) {
		if _, err := bw.WriteString(strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("writing export line: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing export line: %w", err)
		}
	}
	return bw.Flush()
}
