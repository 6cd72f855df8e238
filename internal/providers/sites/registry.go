package sites

import (
	"sync"

	"github.com/brogergvhs/noveld/internal/providers"
)

// All returns a fresh instance of every supported adapter, in the order
// they are listed by the sites command.
func All() []providers.Adapter {
	return []providers.Adapter{
		NewHjwzw(),
		NewPiaotia(),
		NewUUkanshu(),
		NewCzbooks(),
		NewNovel543(),
		NewQbtr(),
	}
}

var defaultRegistry = sync.OnceValues(func() (*providers.Registry, error) {
	return providers.NewRegistry(All()...)
})

// Default returns the process-wide registry. It is built on first use and
// never changes afterwards.
func Default() (*providers.Registry, error) {
	return defaultRegistry()
}
