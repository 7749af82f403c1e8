package sim

import "log"

// LogHookBase proves the common logic of hooks that write into logs
type LogHookBase struct {
	*log.Logger
}
