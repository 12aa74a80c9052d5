package middleware

import "fmt"

func errBudgetExhausted(nodeName string, cap int) error {
	return fmt.Errorf("token budget: node %q exceeded its %d-token share", nodeName, cap)
}

func errCumulativeBudgetWarning(used, total int) error {
	return fmt.Errorf("token budget: cumulative usage %d/%d tokens crossed the compression threshold", used, total)
}
