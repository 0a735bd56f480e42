package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// terminalDialog shows confirmations on a terminal.
type terminalDialog struct {
	out io.Writer
}

func (d terminalDialog) Confirm(title, body string, options []string) {
	fmt.Fprintf(d.out, "%s\n%s\n", title, body)
}

// askYesNo asks the user to confirm with y. Everything else is a no.
func askYesNo(in *bufio.Reader, out io.Writer) bool {
	fmt.Fprint(out, "(y/N)? ")
	s, _ := in.ReadString('\n')
	return strings.ToLower(strings.TrimSpace(s)) == "y"
}
