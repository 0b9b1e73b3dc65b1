package rtu

// Log hooks. All of them are silent when nil.
var (
	InfoLogFunc  func(string, ...any)
	WarnLogFunc  func(string, ...any)
	DebugLogFunc func(string, ...any)
)

func log(f string, a ...any) {
	if InfoLogFunc != nil {
		InfoLogFunc(f, a...)
	}
}

func warnLog(f string, a ...any) {
	if WarnLogFunc != nil {
		WarnLogFunc(f, a...)
	}
}

func debugLog(f string, a ...any) {
	if DebugLogFunc != nil {
		DebugLogFunc(f, a...)
	}
}
