package testutil

import "fmt"

func generateTestID(n int) string {
	return fmt.Sprintf("test-doc-%04d", n)
}
