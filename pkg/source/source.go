// Package source loads program text from files or standard input.
package source

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/kosayoda/gochicken/pkg/lexer"
)

// Stdin is the path that names standard input.
const Stdin = "-"

// Loader reads programs from a file system, "-" meaning Stdin.
type Loader struct {
	fs    afero.Fs
	stdin io.Reader
}

func NewLoader(fs afero.Fs, stdin io.Reader) *Loader {
	return &Loader{fs: fs, stdin: stdin}
}

// Load returns the raw lines of the file at path.
func (l *Loader) Load(path string) ([]string, error) {
	if path == Stdin {
		lines, err := lexer.Lines(l.stdin)
		if err != nil {
			return nil, errors.Wrap(err, "standard input")
		}
		return lines, nil
	}
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open program %q", path)
	}
	defer func() {
		_ = f.Close()
	}()
	lines, err := lexer.Lines(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return lines, nil
}

// LoadProgram loads and tokenizes the file at path.
func (l *Loader) LoadProgram(path string) (lexer.Program, error) {
	lines, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := lexer.Tokenize(lines)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// Load reads path from fs.
func Load(fs afero.Fs, path string) ([]string, error) {
	return NewLoader(fs, os.Stdin).Load(path)
}

// LoadProgram reads and tokenizes path from fs.
func LoadProgram(fs afero.Fs, path string) (lexer.Program, error) {
	return NewLoader(fs, os.Stdin).LoadProgram(path)
}
