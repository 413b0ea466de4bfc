// Package testing is imported for side effects by package tests. It marks
// the process as a test run and lowers the bcrypt cost.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	setDefault("INTRANET_TEST_MODE", "1")
	setDefault("BCRYPT_COST", "4")
}

func setDefault(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		_ = os.Setenv(key, value)
	}
}

// TestMain runs m; packages may delegate to it.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
