package model

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/journey"
)

// Packers encode responses for machine clients as a serialized
// google.protobuf.Struct, so no generated code is needed on either end.
type (
	StationPacker func(version uint64, stations []data.Station) ([]byte, error)
	QuotePacker   func(q journey.Quote, maps map[string]Position) ([]byte, error)
)

var (
	_ StationPacker = PackStations
	_ QuotePacker   = PackQuote
)

func PackStations(version uint64, stations []data.Station) ([]byte, error) {
	list := make([]interface{}, len(stations))
	for i, s := range stations {
		list[i] = stationValue(s)
	}

	st, err := structpb.NewStruct(map[string]interface{}{
		"version":  version,
		"stations": list,
	})
	if err != nil {
		return nil, fmt.Errorf("pack stations: %w", err)
	}
	return proto.Marshal(st)
}

func PackQuote(q journey.Quote, maps map[string]Position) ([]byte, error) {
	path := make([]interface{}, len(q.Path))
	for i, s := range q.Path {
		path[i] = stationValue(s)
	}

	routes := make(map[string]interface{}, len(maps))
	for line, p := range maps {
		routes[line] = p.ToString()
	}

	fields := map[string]interface{}{
		"reachable": q.Reachable(),
		"path":      path,
		"stops":     q.Stops,
		"fare":      q.Fare,
		"minutes":   q.Minutes,
		"routes":    routes,
	}
	if q.HasInterchange() {
		fields["interchange"] = q.Interchange
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("pack quote: %w", err)
	}
	return proto.Marshal(st)
}

// UnpackStruct decodes the output of any packer.
func UnpackStruct(b []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(b, st); err != nil {
		return nil, err
	}
	return st, nil
}

func stationValue(s data.Station) map[string]interface{} {
	return map[string]interface{}{
		"id":         s.ID,
		"name":       s.Name,
		"line":       s.Line,
		"hasParking": s.HasParking,
		"hasFeeder":  s.HasFeeder,
	}
}
