// Package sniffer finds statement PDFs in an input directory.
// It records whether each file carries the PDF signature, and fingerprints
// it so re-downloaded duplicates can be recognised.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pdfMagic is the signature every PDF starts with.
var pdfMagic = []byte("%PDF-")

var (
	ErrNotDirectory = errors.New("input path is not a directory")
	ErrNotPDF       = errors.New("file is not a pdf")
)

// File is one statement document found in the input directory.
type File struct {
	Name        string // base name, used as the record's source file
	Path        string
	Size        int64
	Fingerprint string // SHA256 of the content
	// Signed is false when the content does not start with %PDF-, e.g. an
	// empty file or a saved error page.
	Signed bool
}

// Check returns ErrNotPDF for a file without the PDF signature.
func (f File) Check() error {
	if !f.Signed {
		return fmt.Errorf("%w: %s", ErrNotPDF, f.Name)
	}
	return nil
}

// Discover lists dir (non-recursively) and returns the PDF statements it holds,
// ordered by name. Only the extension decides membership; a .pdf without the
// signature is still returned so the caller can report it.
func Discover(dir string) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !HasPDFExtension(entry.Name()) {
			continue
		}

		f, err := Inspect(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Inspect reads a single file and returns its description.
func Inspect(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer fh.Close()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(fh, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	hash := sha256.New()
	hash.Write(head[:n])
	size, err := io.Copy(hash, fh)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	return &File{
		Name:        filepath.Base(path),
		Path:        path,
		Size:        size + int64(n),
		Fingerprint: hex.EncodeToString(hash.Sum(nil)),
		Signed:      IsPDF(head[:n]),
	}, nil
}

// IsPDF reports whether data begins with the PDF signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// HasPDFExtension reports whether name ends in .pdf, ignoring case.
func HasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Duplicates groups files sharing a fingerprint. Only groups with more than
// one member are returned, keyed by fingerprint.
func Duplicates(files []File) map[string][]string {
	byHash := make(map[string][]string)
	for _, f := range files {
		byHash[f.Fingerprint] = append(byHash[f.Fingerprint], f.Name)
	}
	for k, names := range byHash {
		if len(names) < 2 {
			delete(byHash, k)
		}
	}
	return byHash
}
