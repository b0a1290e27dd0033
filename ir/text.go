package ir

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Fprint writes the textual listing of f: a header naming the method and its
// local slots, then one instruction per line with labels flush left.
func Fprint(w io.Writer, f *Func) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, ".method %s\n", f.Method.Signature())
	if f.Method.This != nil {
		fmt.Fprintf(bw, ".arg 0 %s this\n", f.Method.This.Type)
	}
	for _, p := range f.Method.Params {
		fmt.Fprintf(bw, ".arg %d %s %s\n", p.Slot, p.Type, p.Name)
	}
	for _, l := range f.Locals {
		fmt.Fprintf(bw, ".local %d %s %s\n", l.Slot, l.Type, l.Name)
	}
	for _, in := range f.Code {
		if in.Op == OpLabel {
			fmt.Fprintln(bw, in)
			continue
		}
		fmt.Fprintf(bw, "\t%s\n", in)
	}
	return bw.Flush()
}

// Sprint returns the listing of f as a string.
func Sprint(f *Func) string {
	var sb strings.Builder
	Fprint(&sb, f)
	return sb.String()
}
