// Package lexer turns program text into per-line token counts.
package lexer

import (
	"bufio"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/kosayoda/gochicken/pkg/errs"
)

const (
	Token     = "chicken"
	Separator = " "

	maxLineSize = 16 * 1024 * 1024
)

// Program is the ordered list of token counts, one per source line.
type Program []int

func (p Program) Len() int {
	return len(p)
}

// Fingerprint identifies the program by its counts.
func (p Program) Fingerprint() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, binary.MaxVarintLen64)
	for _, c := range p {
		buf = binary.AppendUvarint(buf[:0], uint64(c))
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

func (p Program) String() string {
	var sb strings.Builder
	for i, c := range p {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

// CountLine returns the number of tokens on a single line.
func CountLine(line string) (int, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return 0, nil
	}
	segments := strings.Split(line, Separator)
	var bad []string
	for _, s := range segments {
		if s != Token {
			bad = append(bad, strconv.Quote(s))
		}
	}
	if len(bad) > 0 {
		return 0, errs.MalformedLine.Errorf("invalid token(s) %s", strings.Join(bad, ", "))
	}
	return len(segments), nil
}

func Tokenize(lines []string) (Program, error) {
	p := make(Program, len(lines))
	for i, l := range lines {
		n, err := CountLine(l)
		if err != nil {
			return nil, errs.AtLine(err, i+1)
		}
		p[i] = n
	}
	return p, nil
}

// Lines splits text into raw lines; a trailing newline does not start a new line.
func Lines(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read program text")
	}
	return lines, nil
}

func Read(r io.Reader) (Program, error) {
	lines, err := Lines(r)
	if err != nil {
		return nil, err
	}
	return Tokenize(lines)
}
