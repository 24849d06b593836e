package data

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
)

// Snapshot is one published version of the network. It is never modified
// after it has been published.
type Snapshot struct {
	Version   uint64
	Directory *Directory
	Fares     FareTable
}

// Registry holds the current network snapshot. Readers call Snapshot once per
// request and keep using that value. Station edits build a whole new
// directory, persist it, then publish it in a single atomic swap.
type Registry struct {
	mu   sync.Mutex // serializes edits
	cur  atomic.Pointer[Snapshot]
	path string
}

// NewRegistry publishes dir and fares as version 1. If path is not empty,
// station edits are written back to it.
func NewRegistry(dir *Directory, fares FareTable, path string) *Registry {
	r := &Registry{path: path}
	r.cur.Store(&Snapshot{Version: 1, Directory: dir, Fares: fares})
	return r
}

// OpenRegistry loads the network at path (or the built-in one for an empty
// path) and returns a registry serving it.
func OpenRegistry(path string) (*Registry, error) {
	dir, fares, err := LoadNetwork(path)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d stations on %d lines, %d fare rules", dir.Len(), len(dir.lines), len(fares))
	return NewRegistry(dir, fares, path), nil
}

func (r *Registry) Snapshot() *Snapshot {
	return r.cur.Load()
}

// Reload rereads the network file and publishes it. The file is read under
// the edit lock, so a reload never publishes a file older than the last edit.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir, fares, err := LoadNetwork(r.path)
	if err != nil {
		return fmt.Errorf("reload network: %w", err)
	}
	r.publish(dir, fares)
	return nil
}

// AddStation appends a new station to the end of line. Its ID is the line
// prefix followed by one more than the highest number in use on that line.
func (r *Registry) AddStation(line, name string, hasParking, hasFeeder bool) (Station, error) {
	name = strings.TrimSpace(name)
	if err := ValidateStationName(name); err != nil {
		return Station{}, err
	}
	if !IsLine(line) {
		return Station{}, ValidationError(fmt.Sprintf("invalid line %q, expected %s or %s", line, LineBlue, LineGreen))
	}

	var added Station
	err := r.edit(func(cur *Directory, lines []NamedLine) ([]NamedLine, error) {
		if _, ok := cur.Find(name); ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStation, name)
		}

		for i := range lines {
			if !strings.EqualFold(lines[i].Name, line) {
				continue
			}
			next := 0
			for _, s := range lines[i].Line {
				if n := s.CodeNum(); n > next {
					next = n
				}
			}
			added = Station{
				ID:         fmt.Sprintf("%s%d", lines[i].Prefix, next+1),
				Name:       name,
				Line:       lines[i].Name,
				HasParking: hasParking,
				HasFeeder:  hasFeeder,
			}
			lines[i].Line = append(lines[i].Line, added)
			return lines, nil
		}
		return nil, ValidationError(fmt.Sprintf("line %q is not part of the network", line))
	})
	return added, err
}

// UpdateStation renames a station (unless name is empty) and sets its
// facility flags.
func (r *Registry) UpdateStation(id, name string, hasParking, hasFeeder bool) (Station, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		if err := ValidateStationName(name); err != nil {
			return Station{}, err
		}
	}

	var updated Station
	err := r.edit(func(cur *Directory, lines []NamedLine) ([]NamedLine, error) {
		if name != "" {
			if s, ok := cur.Find(name); ok && !strings.EqualFold(s.ID, id) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateStation, name)
			}
		}

		for i := range lines {
			for j := range lines[i].Line {
				s := &lines[i].Line[j]
				if !strings.EqualFold(s.ID, id) {
					continue
				}
				if name != "" {
					s.Name = name
				}
				s.HasParking = hasParking
				s.HasFeeder = hasFeeder
				updated = *s
				return lines, nil
			}
		}
		return nil, fmt.Errorf("%w: id %s", ErrUnknownStation, id)
	})
	return updated, err
}

func (r *Registry) DeleteStation(id string) (Station, error) {
	var removed Station
	err := r.edit(func(_ *Directory, lines []NamedLine) ([]NamedLine, error) {
		for i := range lines {
			for j, s := range lines[i].Line {
				if !strings.EqualFold(s.ID, id) {
					continue
				}
				removed = s
				lines[i].Line = append(lines[i].Line[:j], lines[i].Line[j+1:]...)
				return lines, nil
			}
		}
		return nil, fmt.Errorf("%w: id %s", ErrUnknownStation, id)
	})
	return removed, err
}

// edit applies fn to a private copy of the current lines, then validates,
// saves and publishes the result. Nothing is published if any step fails.
func (r *Registry) edit(fn func(cur *Directory, lines []NamedLine) ([]NamedLine, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.cur.Load()
	lines, err := fn(cur.Directory, cur.Directory.Lines())
	if err != nil {
		return err
	}

	dir, err := NewDirectory(lines, cur.Directory.Interchanges())
	if err != nil {
		return err
	}

	if r.path != "" {
		if err := SaveNetwork(r.path, dir, cur.Fares); err != nil {
			return fmt.Errorf("save network: %w", err)
		}
	}

	r.publish(dir, cur.Fares)
	return nil
}

// publish must be called with mu held.
func (r *Registry) publish(dir *Directory, fares FareTable) {
	prev := r.cur.Load()
	r.cur.Store(&Snapshot{Version: prev.Version + 1, Directory: dir, Fares: fares})
	log.Printf("published network version %d (%d stations)", prev.Version+1, dir.Len())
}
