package tolls

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Registry is the read-only set of toll facilities for one dataset version. It is built once at
// start-up and shared by every request; nothing mutates it afterwards.
type Registry struct {
	version     string
	lastUpdated string
	facilities  []Facility
	byID        map[string]int
	location    *time.Location
}

// NewRegistry validates ds and indexes it by facility id. Local times of day are interpreted in the
// dataset time zone, or loc when the dataset names none.
func NewRegistry(ds *Dataset, loc *time.Location) (*Registry, error) {
	if loc == nil {
		loc = time.Local
	}
	if ds.Timezone != "" {
		tz, err := time.LoadLocation(ds.Timezone)
		if err != nil {
			return nil, fmt.Errorf("toll dataset timezone: %w", err)
		}
		loc = tz
	}

	r := &Registry{
		version:     ds.Version,
		lastUpdated: ds.LastUpdated,
		facilities:  make([]Facility, len(ds.Facilities)),
		byID:        make(map[string]int, len(ds.Facilities)),
		location:    loc,
	}
	copy(r.facilities, ds.Facilities)

	for i, f := range r.facilities {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate facility id %s", f.ID)
		}
		r.byID[f.ID] = i
	}
	return r, nil
}

// LoadRegistry reads and validates the dataset at path.
func LoadRegistry(path string, log *zap.Logger) (*Registry, error) {
	log.Info("Reading toll facility dataset...", zap.String("path", path))
	ds, err := ReadDataset(path)
	if err != nil {
		return nil, err
	}
	r, err := NewRegistry(ds, time.Local)
	if err != nil {
		return nil, err
	}
	log.Info("Toll facility registry loaded",
		zap.String("version", r.version),
		zap.String("last_updated", r.lastUpdated),
		zap.Int("facilities", len(r.facilities)),
		zap.String("timezone", r.location.String()))
	return r, nil
}

func (r *Registry) Get(id string) (Facility, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Facility{}, false
	}
	return r.facilities[i], true
}

// Facilities returns the facilities in dataset order.
func (r *Registry) Facilities() []Facility {
	out := make([]Facility, len(r.facilities))
	copy(out, r.facilities)
	return out
}

func (r *Registry) Len() int {
	return len(r.facilities)
}

func (r *Registry) Location() *time.Location {
	return r.location
}

func (r *Registry) GetVersion() string {
	return r.version
}

func (r *Registry) GetLastUpdated() string {
	return r.lastUpdated
}
