package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "INTRANET_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	enabled, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	return enabled
})

// InTestMode reports whether INTRANET_TEST_MODE is set, in which case the
// binaries exit before opening any connection.
func InTestMode() bool {
	return testMode()
}
