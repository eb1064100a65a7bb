package rpc

import "log"

func logf(format string, args ...interface{}) {
	log.Printf("[rpc] "+format, args...)
}
