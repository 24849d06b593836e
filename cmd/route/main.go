package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/journey"
	"go.lepak.sg/metro-planner/model"
)

var (
	network = flag.String("n", "", "network file (default: built-in)")
	format  = flag.String("f", "text", "output format: text, json or pb (hex)")
)

func main() {
	flag.Parse()
	log.Default().SetOutput(io.Discard)

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: route [-n network.yaml] [-f text|json|pb] FROM TO")
		os.Exit(2)
	}

	dir, fares, err := data.LoadNetwork(*network)
	if err != nil {
		panic(err)
	}

	q, err := journey.NewResolver(dir, fares).PlanNames(flag.Arg(0), flag.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	maps := model.RouteMaps(dir, q.Path)

	switch *format {
	case "json":
		out := map[string]interface{}{
			"path":        q.Path,
			"stops":       q.Stops,
			"interchange": q.Interchange,
			"fare":        q.Fare,
			"minutes":     q.Minutes,
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			panic(err)
		}
		fmt.Println(string(b))

	case "pb":
		b, err := model.PackQuote(q, maps)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%x\n", b)

	default:
		for i, s := range q.Path {
			fmt.Printf("%2d. %-4s %s\n", i, s.ID, s.Name)
		}
		fmt.Printf("stops=%d interchange=%q fare=%d minutes=%d\n", q.Stops, q.Interchange, q.Fare, q.Minutes)
		for _, nl := range dir.Lines() {
			fmt.Printf("%-5s %s\n", nl.Name, maps[nl.Name].ToString())
		}
	}

	if !q.Reachable() {
		os.Exit(1)
	}
}
