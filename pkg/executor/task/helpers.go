package task

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// WaitForEnter prints prompt to w and blocks until a line (or EOF) is read from r.
func WaitForEnter(r io.Reader, w io.Writer, prompt string) error {
	fmt.Fprint(w, prompt)
	_, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if err == io.EOF {
		fmt.Fprintln(w)
	}
	return nil
}

// describeInput renders tool arguments as a short key=value list.
func describeInput(input map[string]interface{}) string {
	if len(input) == 0 {
		return ""
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, firstLine(fmt.Sprint(input[k]), 60)))
	}
	return strings.Join(parts, " ")
}

// firstLine returns the first line of s, cut to n runes.
func firstLine(s string, n int) string {
	s = strings.TrimSpace(s)
	cut := false
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s, cut = s[:i], true
	}
	if utf8.RuneCountInString(s) > n {
		s, cut = string([]rune(s)[:n]), true
	}
	if cut {
		s += "…"
	}
	return s
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
