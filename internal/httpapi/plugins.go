package httpapi

import "net/http"

// PluginInfo describes one active action plugin (spec §6.1). Action
// plugins themselves are out of scope (spec §1); Service.Plugins is a
// static/injectable inventory the process wires at startup.
type PluginInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Service) pluginActions(w http.ResponseWriter, r *http.Request) {
	plugins := s.Plugins
	if plugins == nil {
		plugins = []PluginInfo{}
	}
	writeJSON(w, http.StatusOK, plugins)
}
