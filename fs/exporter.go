package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/fwojciec/doxindex"
)

// Exporter writes an Index as a search directory with atomic update
// semantics. Tables are written to a temporary directory, then moved into
// place on Commit.
type Exporter struct {
	encoder doxindex.IndexEncoder
	baseDir string
	name    string
}

// NewExporter creates a new Exporter.
// baseDir is the parent directory, name is the output directory name.
// Files are written to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewExporter(encoder doxindex.IndexEncoder, baseDir, name string) *Exporter {
	return &Exporter{
		encoder: encoder,
		baseDir: baseDir,
		name:    name,
	}
}

func (x *Exporter) tempDir() string {
	return filepath.Join(x.baseDir, x.name+".tmp")
}

func (x *Exporter) finalDir() string {
	return filepath.Join(x.baseDir, x.name)
}

// Export writes one table file per first letter and the section listing.
func (x *Exporter) Export(ctx context.Context, idx *doxindex.Index) error {
	if err := os.RemoveAll(x.tempDir()); err != nil {
		return err
	}
	if err := os.MkdirAll(x.tempDir(), 0755); err != nil {
		return err
	}

	byLetter := make(map[rune][]*doxindex.Entry)
	for e := range idx.Entries() {
		r := doxindex.EntryLetter(e)
		byLetter[r] = append(byLetter[r], e)
	}
	letters := make([]rune, 0, len(byLetter))
	for r := range byLetter {
		letters = append(letters, r)
	}
	slices.Sort(letters)

	section := doxindex.SearchSection{
		ID:      0,
		Name:    doxindex.DefaultSection,
		Label:   "All",
		Letters: string(letters),
	}

	for _, r := range letters {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := x.writeFile(section.FileName(r), func(f *os.File) error {
			return x.encoder.EncodeEntries(f, slices.Values(byLetter[r]))
		})
		if err != nil {
			return err
		}
	}

	return x.writeFile(SectionsFile, func(f *os.File) error {
		return x.encoder.EncodeSections(f, []doxindex.SearchSection{section})
	})
}

func (x *Exporter) writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(filepath.Join(x.tempDir(), name))
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

// CheckTarget returns ECONFLICT when the output directory exists, is not
// empty and holds no search directory that Commit may replace.
func (x *Exporter) CheckTarget() error {
	dirEntries, err := os.ReadDir(x.finalDir())
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	if len(dirEntries) == 0 {
		return nil
	}
	if _, err := os.Stat(filepath.Join(x.finalDir(), SectionsFile)); err == nil {
		return nil
	}
	return doxindex.Errorf(doxindex.ECONFLICT, "%s is not empty and is not a search directory", x.finalDir())
}

// Commit replaces the output directory with the exported tables.
func (x *Exporter) Commit() error {
	if err := os.RemoveAll(x.finalDir()); err != nil {
		return err
	}

	if err := os.Rename(x.tempDir(), x.finalDir()); err != nil {
		return err
	}

	return nil
}

// Abort removes the temporary directory.
func (x *Exporter) Abort() error {
	return os.RemoveAll(x.tempDir())
}
