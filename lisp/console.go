package lisp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Console is where print writes and read reads.
type Console interface {
	WriteLine(s string) error
	ReadLine() (string, error)
}

type stdConsole struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) Console {
	return &stdConsole{in: bufio.NewReader(in), out: out}
}

func (c *stdConsole) WriteLine(s string) error {
	_, err := fmt.Fprintln(c.out, s)
	return err
}

// ReadLine returns io.EOF only if nothing at all was read.
func (c *stdConsole) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}
