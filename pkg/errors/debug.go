package errors

import "fmt"

// Dump writes the full wrap chain, innermost last. Intended for logs only.
func Dump(err error) string {
	out := ""
	depth := 0
	for err != nil {
		if depth > 0 {
			out += " <- "
		}
		out += fmt.Sprintf("[%d] %v", depth, err)
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
		depth++
	}
	return out
}
