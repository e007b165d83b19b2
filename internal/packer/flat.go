package packer

import "github.com/xDarkicex/touchgraph/internal/graphpage"

// Flat is the "FLAT"-style simple packer (spec §4.5.1): it buffers
// vertices in arrival order and peels the tail into the next page
// whenever the shrunk buffer would overflow the page budget.
type Flat struct {
	w   *Writer
	buf []graphpage.Record
}

// NewFlat returns a Flat packer writing through w.
func NewFlat(w *Writer) *Flat {
	return &Flat{w: w}
}

// Add buffers v, writing and rotating out a full page if v pushed the
// buffer over budget.
func (f *Flat) Add(v graphpage.Record) error {
	f.buf = append(f.buf, v)
	fit, overflow, err := peelUntilFits(f.buf, f.w.pageSize)
	if err != nil {
		return err
	}
	if len(overflow) == 0 {
		return nil
	}
	if _, err := f.w.WritePage(fit); err != nil {
		return err
	}
	f.buf = overflow
	return nil
}

// Finish writes out whatever remains buffered as a final page.
func (f *Flat) Finish() error {
	if len(f.buf) == 0 {
		return nil
	}
	_, err := f.w.WritePage(f.buf)
	f.buf = nil
	return err
}
