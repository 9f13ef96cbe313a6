package task

import (
	"fmt"
	"sync"

	"github.com/haierkeys/link-editor-service/internal/app"
)

// TaskFactory builds a task from the app container. A nil task means it is disabled by configuration.
type TaskFactory func(a *app.App) (Task, error)

type namedFactory struct {
	name    string
	factory TaskFactory
}

var (
	registryMu sync.RWMutex
	factories  []namedFactory
)

// Register adds a task factory under name. Called from init; a name may only be used once.
func Register(name string, factory TaskFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, f := range factories {
		if f.name == name {
			panic(fmt.Sprintf("task: factory %q registered twice", name))
		}
	}
	factories = append(factories, namedFactory{name: name, factory: factory})
}

// registered returns the factories in registration order
func registered() []namedFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return append([]namedFactory(nil), factories...)
}
