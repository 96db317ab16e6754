package config

// UnusedDependencies reports the dependency edges a module declares beyond
// what a baseline config declares for it
type UnusedDependencies struct {
	Path         string             `json:"path"`
	Dependencies []DependencyConfig `json:"dependencies"`
}

// CompareDependencies compares this config (the baseline) against another
// and reports, per module of the other config, the dependency edges the
// baseline does not declare. Modules unknown to the baseline report all of
// their edges. Only edge target paths are compared; edges that differ in
// metadata alone are not reported.
func (c *ProjectConfig) CompareDependencies(other *ProjectConfig) []UnusedDependencies {
	var all []UnusedDependencies

	ownPaths := make(map[string]bool)
	for _, m := range c.AllModules() {
		ownPaths[m.Path] = true
	}

	for _, moduleConfig := range other.AllModules() {
		if !ownPaths[moduleConfig.Path] {
			all = append(all, UnusedDependencies{
				Path:         moduleConfig.Path,
				Dependencies: moduleConfig.DependsOn,
			})
			continue
		}

		ownDeps := make(map[string]bool)
		for _, dep := range c.DependenciesForModule(moduleConfig.Path) {
			ownDeps[dep.Path] = true
		}

		var extra []DependencyConfig
		for _, dep := range moduleConfig.DependsOn {
			if !ownDeps[dep.Path] {
				extra = append(extra, dep)
			}
		}
		if len(extra) > 0 {
			all = append(all, UnusedDependencies{
				Path:         moduleConfig.Path,
				Dependencies: extra,
			})
		}
	}

	return all
}
