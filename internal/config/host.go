package config

import "strings"

// Host holds the settings of the host programs.
type Host struct {
	MapDir    string
	MapName   string
	Layers    []string
	Tileset   string
	TraceFile string // Empty disables tracing
	LogLevel  string
}

// HostFromEnv reads host settings from MAP_DIR, MAP_NAME, MAP_LAYERS,
// TILESET, TRACE_FILE and LOG_LEVEL.
func HostFromEnv() Host {
	return Host{
		MapDir:    GetEnv("MAP_DIR", "data/maps"),
		MapName:   GetEnv("MAP_NAME", "demo"),
		Layers:    splitList(GetEnv("MAP_LAYERS", "ground,walls")),
		Tileset:   GetEnv("TILESET", "data/tileset.txt"),
		TraceFile: GetEnv("TRACE_FILE", ""),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
