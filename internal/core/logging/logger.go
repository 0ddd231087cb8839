package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentKey is the field naming the subsystem that wrote a log line.
const ComponentKey = "component"

// Component returns the global logger tagged with name. Use it where no
// logger is injected, such as package-level helpers.
func Component(name string) zerolog.Logger {
	return For(log.Logger, name)
}

// For tags an injected logger with name.
func For(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(ComponentKey, name).Logger()
}
