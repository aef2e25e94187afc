package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/kosayoda/gochicken/pkg/errs"
)

//go:generate mockgen -source=io.go -destination=io_mock_test.go -package=vm

// Input is where read-int and read-char take their values from.
type Input interface {
	ReadInt() (int64, error)
	ReadChar() (rune, error)
}

// Output receives everything a program prints.
type Output interface {
	WriteInt(n int64) error
	WriteChar(r rune) error
}

type readerInput struct {
	r *bufio.Reader
}

func NewReaderInput(r io.Reader) Input {
	return &readerInput{r: bufio.NewReader(r)}
}

func (in *readerInput) ReadInt() (int64, error) {
	var n int64
	if _, err := fmt.Fscan(in.r, &n); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, errs.InputExhausted.New("end of input while reading an integer")
		}
		return 0, errs.InvalidInput.Wrap(err, "failed to read an integer")
	}
	return n, nil
}

func (in *readerInput) ReadChar() (rune, error) {
	r, _, err := in.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errs.InputExhausted.New("end of input while reading a character")
		}
		return 0, errors.Wrap(err, "failed to read a character")
	}
	return r, nil
}

type writerOutput struct {
	w   io.Writer
	buf [utf8.UTFMax]byte
}

// NewWriterOutput writes straight through to w, one value at a time.
func NewWriterOutput(w io.Writer) Output {
	return &writerOutput{w: w}
}

func (out *writerOutput) WriteInt(n int64) error {
	if _, err := io.WriteString(out.w, strconv.FormatInt(n, 10)); err != nil {
		return errors.Wrap(err, "failed to write an integer")
	}
	return nil
}

func (out *writerOutput) WriteChar(r rune) error {
	n := utf8.EncodeRune(out.buf[:], r)
	if _, err := out.w.Write(out.buf[:n]); err != nil {
		return errors.Wrap(err, "failed to write a character")
	}
	return nil
}
