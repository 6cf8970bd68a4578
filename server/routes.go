package server

import (
	"sort"
	"strings"
)

// Route is one registered route, listed in the startup log.
type Route struct {
	Method  string
	Path    string
	Handler string
}

var systemPaths = map[string]bool{
	"/health": true,
	"/alive":  true,
	"/ready":  true,
	"/info":   true,
}

// Routes lists registered routes, API routes first.
func (s *Server) Routes() []Route {
	info := s.engine.Routes()
	sort.Slice(info, func(i, j int) bool {
		iSys, jSys := systemPaths[info[i].Path], systemPaths[info[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if info[i].Path != info[j].Path {
			return info[i].Path < info[j].Path
		}
		return info[i].Method < info[j].Method
	})

	routes := make([]Route, 0, len(info))
	for _, r := range info {
		routes = append(routes, Route{Method: r.Method, Path: r.Path, Handler: handlerName(r.Handler)})
	}
	return routes
}

// handlerName shortens Gin's handler path:
//
//	github.com/kbukum/voiceingest/api.(*Handler).Transcribe-fm -> Handler.Transcribe
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
