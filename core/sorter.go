package core

// Sorter produces a total order over a set of plugins that is consistent with
// each plugin's declared dependencies. Implementations must be pure: the same
// input always yields the same output, and a failed sort has no side effects.
type Sorter interface {
	Sort(plugins []Plugin) ([]Plugin, error)
}

// DependencySorter is the default Sorter. It orders dependencies before their
// dependents and breaks ties by registration order, so repeated sorts of the
// same set are identical. Dependencies on names absent from the input are
// ignored; the active set may legitimately exclude a dependency.
type DependencySorter struct{}

func (DependencySorter) Sort(plugins []Plugin) ([]Plugin, error) {
	index := make(map[string]int, len(plugins))
	for i, p := range plugins {
		index[p.Name()] = i
	}

	// Resolve dependency names to input positions, dropping absent names.
	deps := make([][]int, len(plugins))
	for i, p := range plugins {
		for _, name := range p.DependsOn() {
			if j, ok := index[name]; ok {
				deps[i] = append(deps[i], j)
			}
		}
	}

	sorted := make([]Plugin, 0, len(plugins))
	placed := make([]bool, len(plugins))

	// Kahn's algorithm, always taking the earliest registered plugin whose
	// dependencies are all placed.
	for len(sorted) < len(plugins) {
		next := -1
		for i := range plugins {
			if placed[i] {
				continue
			}
			ready := true
			for _, j := range deps[i] {
				if !placed[j] {
					ready = false
					break
				}
			}
			if ready {
				next = i
				break
			}
		}
		if next < 0 {
			var cycle []string
			for i, p := range plugins {
				if !placed[i] {
					cycle = append(cycle, p.Name())
				}
			}
			return nil, &CycleError{Plugins: cycle}
		}
		placed[next] = true
		sorted = append(sorted, plugins[next])
	}

	return sorted, nil
}
