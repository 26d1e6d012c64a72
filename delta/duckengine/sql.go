package duckengine

import (
	"fmt"
	"strings"

	"github.com/metrico/deltamaint/pred"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, `'`, `''`)
}

// renderPred turns a predicate tree into a SQL condition over qual's
// columns, collecting literal operands as bind arguments.
func renderPred(n pred.Node, qual string, args *[]any) (string, error) {
	switch p := n.(type) {
	case nil:
		return "TRUE", nil
	case pred.True:
		return "TRUE", nil
	case pred.And:
		if len(p.Nodes) == 0 {
			return "TRUE", nil
		}
		parts := make([]string, 0, len(p.Nodes))
		for _, c := range p.Nodes {
			s, err := renderPred(c, qual, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	case pred.Cmp:
		*args = append(*args, p.Value)
		return fmt.Sprintf("%s.%s %s ?", qual, quoteIdent(p.Col), p.Op), nil
	}
	return "", fmt.Errorf("unsupported predicate node %T", n)
}
