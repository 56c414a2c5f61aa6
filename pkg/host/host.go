// Package host defines the contracts between the host server and the
// modifications it loads.
//
// A modification never reaches into host internals. At each lifecycle point it
// receives a [Container] from which it resolves the narrow collaborators it
// needs ([Classifier], [ConfigRegistry], [Logger] and the database tables)
// once, and passes them explicitly to the code doing the work.
package host

import (
	"context"
	"errors"
	"fmt"
)

// Well-known container service names.
const (
	DatabaseTables = "DatabaseTables"
	ItemClassifier = "ItemClassifier"
	ConfigServer   = "ConfigServer"
	LoggerService  = "WinstonLogger"
)

// ErrServiceNotRegistered is returned by [Container.Resolve] when no service
// is registered under the requested name.
var ErrServiceNotRegistered = errors.New("host: service not registered")

// Container resolves host services by name.
type Container interface {
	Resolve(name string) (any, error)
}

// Resolve looks up name in c and asserts the result to T.
func Resolve[T any](c Container, name string) (T, error) {
	var zero T
	v, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("host: service %q is %T, want %T", name, v, zero)
	}
	return t, nil
}

// Classifier answers base-class membership questions about item templates.
// Membership follows the class hierarchy: every key is also an item.
type Classifier interface {
	IsOfCategory(itemID, category string) bool
}

// ConfigRegistry hands out named config sections. The returned value is the
// host's own pointer; mutations through it are visible to the host.
type ConfigRegistry interface {
	Section(name string) (any, error)
}

// Logger is the host's leveled logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// LogWithColor writes a single informational line in the given colours.
	LogWithColor(msg string, text TextColor, bg BackgroundColor)
}

// PostDBLoadMod is implemented by modifications that patch the database
// after it has been loaded and before the server accepts traffic.
type PostDBLoadMod interface {
	PostDBLoad(ctx context.Context, c Container) error
}

// PostServerLoadMod is implemented by modifications that need live services
// and are run after the whole server has started.
type PostServerLoadMod interface {
	PostServerLoad(ctx context.Context, c Container) error
}
