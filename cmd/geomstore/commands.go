package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jward/geomstore"
	"github.com/jward/geomstore/internal/geometry"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
)

var flagWorkers int

var importCmd = &cobra.Command{
	Use:   "import <file.geojson>...",
	Short: "Import element geometries from GeoJSON feature collections",
	Long:  "Stores every feature whose id (or @id/id property) names an element, e.g. \"way/42\". Each file is committed in one transaction.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().IntVar(&flagWorkers, "workers", 0, "files decoded concurrently (default: config value)")
}

func runImport(cmd *cobra.Command, args []string) error {
	var opts []geomstore.Option
	if flagWorkers > 0 {
		opts = append(opts, geomstore.WithWorkers(flagWorkers))
	}
	e, err := openEngine(opts...)
	if err != nil {
		return outputError("import", err)
	}
	defer e.Close()

	n, err := e.ImportGeoJSON(context.Background(), args...)
	if err != nil {
		return outputError("import", err)
	}
	return outputResult(CLIResult{
		Command: "import",
		Results: CLIImportSummary{Files: len(args), Imported: n},
	})
}

var getCmd = &cobra.Command{
	Use:   "get <type/id>",
	Short: "Print the geometry of an element",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	key, err := geomstore.ParseKey(args[0])
	if err != nil {
		return outputError("get", err)
	}
	e, err := openEngine()
	if err != nil {
		return outputError("get", err)
	}
	defer e.Close()

	g, err := e.Get(key)
	if err != nil {
		return outputError("get", err)
	}
	if g == nil {
		return outputError("get", fmt.Errorf("no geometry stored for %s", key))
	}
	return outputResult(CLIResult{
		Command: "get",
		Results: toCLIGeometry(key, g),
	})
}

var keysCmd = &cobra.Command{
	Use:   "keys <minLat> <minLon> <maxLat> <maxLon>",
	Short: "List elements whose bounding box intersects the given box",
	Args:  cobra.ExactArgs(4),
	RunE:  runKeys,
}

func runKeys(cmd *cobra.Command, args []string) error {
	var coords [4]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return outputError("keys", fmt.Errorf("invalid coordinate %q: %w", a, err))
		}
		coords[i] = v
	}
	bbox, err := geometry.NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return outputError("keys", err)
	}

	e, err := openEngine()
	if err != nil {
		return outputError("keys", err)
	}
	defer e.Close()

	keys, err := e.GetAllKeys(bbox)
	if err != nil {
		return outputError("keys", err)
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	total := len(out)
	return outputResult(CLIResult{
		Command:    "keys",
		Results:    out,
		TotalCount: &total,
	})
}

var deleteCmd = &cobra.Command{
	Use:   "delete <type/id>...",
	Short: "Delete the geometries of elements",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	keys, err := parseKeys(args)
	if err != nil {
		return outputError("delete", err)
	}
	e, err := openEngine()
	if err != nil {
		return outputError("delete", err)
	}
	defer e.Close()

	if err := e.DeleteAll(keys); err != nil {
		return outputError("delete", err)
	}
	total := len(args)
	return outputResult(CLIResult{
		Command:    "delete",
		Results:    args,
		TotalCount: &total,
	})
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete geometries that no active or undoable quest references",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("cleanup", err)
	}
	defer e.Close()

	n, err := e.DeleteUnreferenced()
	if err != nil {
		return outputError("cleanup", err)
	}
	return outputResult(CLIResult{
		Command: "cleanup",
		Results: CLICleanup{Deleted: n},
	})
}

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Maintain the quest reference tables consulted by cleanup",
}

func init() {
	refsCmd.AddCommand(&cobra.Command{
		Use:   "add <active|undo> <questType> <type/id>",
		Short: "Record that a quest references an element",
		Args:  cobra.ExactArgs(3),
		RunE:  func(cmd *cobra.Command, args []string) error { return runRefs("refs add", args) },
	})
	refsCmd.AddCommand(&cobra.Command{
		Use:   "remove <active|undo> <questType> <type/id>",
		Short: "Remove a quest reference",
		Args:  cobra.ExactArgs(3),
		RunE:  func(cmd *cobra.Command, args []string) error { return runRefs("refs remove", args) },
	})
}

func runRefs(command string, args []string) error {
	key, err := geomstore.ParseKey(args[2])
	if err != nil {
		return outputError(command, err)
	}
	e, err := openEngine()
	if err != nil {
		return outputError(command, err)
	}
	defer e.Close()

	var table *geomstore.RefTable
	switch args[0] {
	case "active":
		table = e.ActiveQuests()
	case "undo":
		table = e.UndoQuests()
	default:
		return outputError(command, fmt.Errorf("invalid reference table %q: must be active or undo", args[0]))
	}

	if command == "refs add" {
		err = table.Add(args[1], key)
	} else {
		err = table.Remove(args[1], key)
	}
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{
		Command: command,
		Results: CLIRef{Table: table.Name(), QuestType: args[1], Key: key.String()},
	})
}

// --- Helpers ---

func parseKeys(args []string) ([]geomstore.ElementKey, error) {
	keys := make([]geomstore.ElementKey, 0, len(args))
	for _, a := range args {
		k, err := geomstore.ParseKey(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func toCLIGeometry(key geomstore.ElementKey, g geomstore.Geometry) CLIGeometry {
	c := g.GetCenter()
	b := g.Bounds()

	f := geojson.NewFeature(geometry.ToOrb(g))
	f.ID = key.String()
	f.Properties["kind"] = g.Kind().String()

	return CLIGeometry{
		Key:     key.String(),
		Kind:    g.Kind().String(),
		Center:  CLILatLon{Lat: c.Latitude, Lon: c.Longitude},
		Bounds:  CLIBounds{MinLat: b.MinLat, MinLon: b.MinLon, MaxLat: b.MaxLat, MaxLon: b.MaxLon},
		Feature: f,
	}
}
