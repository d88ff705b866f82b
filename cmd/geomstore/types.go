package main

import "github.com/paulmach/orb/geojson"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

type CLILatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CLIBounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// CLIGeometry is a stored geometry together with its GeoJSON rendering.
type CLIGeometry struct {
	Key     string           `json:"key"`
	Kind    string           `json:"kind"`
	Center  CLILatLon        `json:"center"`
	Bounds  CLIBounds        `json:"bounds"`
	Feature *geojson.Feature `json:"feature"`
}

type CLIImportSummary struct {
	Files    int `json:"files"`
	Imported int `json:"imported"`
}

type CLICleanup struct {
	Deleted int64 `json:"deleted"`
}

// CLIRef echoes a reference table change.
type CLIRef struct {
	Table     string `json:"table"`
	QuestType string `json:"quest_type"`
	Key       string `json:"key"`
}
