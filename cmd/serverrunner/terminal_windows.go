package main

// Conservative default: legacy Windows consoles mangle ANSI colors, so
// status lines stay plain unless the operator looks fine without them anyway.
func stdoutIsTerminal() bool {
	return false
}
