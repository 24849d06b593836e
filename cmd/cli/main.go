package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/journey"
	"go.lepak.sg/metro-planner/model"
)

var (
	verbose = flag.Bool("v", false, "verbose mode")
	network = flag.String("n", "", "network file (default: built-in)")
)

func main() {
	flag.Parse()

	if !*verbose {
		// suppress noisy log output
		log.Default().SetOutput(io.Discard)
	}

	dir, fares, err := data.LoadNetwork(*network)
	if err != nil {
		fmt.Printf("loading network: %v\n", err)
		os.Exit(1)
	}
	r := journey.NewResolver(dir, fares)

	in := bufio.NewScanner(os.Stdin)
	prompt := func(p string) (string, bool) {
		fmt.Print(p)
		if !in.Scan() {
			return "", false
		}
		return strings.TrimSpace(in.Text()), true
	}

	fmt.Println("type 'list' to see stations, empty line to quit")
	for {
		from, ok := prompt("\nfrom: ")
		if !ok || from == "" {
			return
		}
		if strings.EqualFold(from, "list") {
			printStations(dir)
			continue
		}
		to, ok := prompt("to:   ")
		if !ok || to == "" {
			return
		}

		q, err := r.PlanNames(from, to)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		printQuote(dir, q)
	}
}

func printQuote(dir *data.Directory, q journey.Quote) {
	if !q.Reachable() {
		fmt.Println("no route between these stations")
		return
	}

	names := make([]string, len(q.Path))
	for i, s := range q.Path {
		names[i] = s.Name
	}
	fmt.Println(strings.Join(names, " > "))

	if q.HasInterchange() {
		fmt.Printf("change at %s\n", q.Interchange)
	}
	if q.Fare == data.NoFare {
		fmt.Printf("%d stops, about %d min, no fare available\n", q.Stops, q.Minutes)
	} else {
		fmt.Printf("%d stops, about %d min, fare %d\n", q.Stops, q.Minutes, q.Fare)
	}

	maps := model.RouteMaps(dir, q.Path)
	for _, nl := range dir.Lines() {
		p := maps[nl.Name]
		if p.Stations() == 0 {
			continue
		}
		fmt.Println(formatPair(nl.Line, p.ToString(), p.Reverse().ToString()))
	}
}

func printStations(dir *data.Directory) {
	for _, nl := range dir.Lines() {
		fmt.Printf("%s line:\n", nl.Name)
		for _, s := range nl.Line {
			fmt.Printf("  %-4s %s\n", s.ID, s.Name)
		}
	}
}

func formatPair(dl data.Line, forward string, reverse string) string {
	var sb strings.Builder

	sb.WriteString(dl[0].Name)
	sb.WriteRune(' ')
	sb.WriteString(forward)
	sb.WriteString(" >>>\n")
	for i := 0; i < len(dl[0].Name)-3; i++ {
		sb.WriteRune(' ')
	}
	sb.WriteString("<<< ")
	sb.WriteString(reverse)
	sb.WriteRune(' ')
	sb.WriteString(dl[len(dl)-1].Name)

	return sb.String()
}
