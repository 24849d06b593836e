package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Line tags. Stations carry the tag of the line they were declared on.
const (
	LineBlue  = "Blue"
	LineGreen = "Green"
)

type Station struct {
	ID         string `json:"id" yaml:"id"` // line prefix followed by a number, eg "B12"
	Name       string `json:"name" yaml:"name"`
	Line       string `json:"line" yaml:"-"`
	HasParking bool   `json:"hasParking" yaml:"hasParking"`
	HasFeeder  bool   `json:"hasFeeder" yaml:"hasFeeder"`
}

// CodeNum returns the numeric part of the station ID, or 0 if there is none.
func (s Station) CodeNum() int {
	if len(s.ID) < 2 {
		return 0
	}

	n, err := strconv.Atoi(s.ID[1:])
	if err != nil {
		return 0
	}
	return n
}

// SameName reports whether both stations carry the same name, ignoring case.
func (s Station) SameName(name string) bool {
	return strings.EqualFold(s.Name, name)
}

func (s Station) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}

// Line is the ordered sequence of stations along one line. Adjacent elements
// are physically adjacent stations.
type Line []Station

// Index returns the position of the station named name, or -1.
func (l Line) Index(name string) int {
	for i := range l {
		if l[i].SameName(name) {
			return i
		}
	}
	return -1
}
