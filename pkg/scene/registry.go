package scene

import (
	"fmt"
	"sort"
)

var builtinScenes = map[string]func() *Scene{
	"cornell": NewCornellScene,
	"spheres": NewSpheresScene,
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the named built-in scene
func Create(name string) (*Scene, error) {
	build, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return build(), nil
}
