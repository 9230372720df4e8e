package venue

import (
	"errors"
	"fmt"
	"strings"

	"slotscout/internal/venue/adapters"
)

// ErrUnknownVenue marks a lookup for a key absent from the descriptor table.
var ErrUnknownVenue = errors.New("unknown venue")

// Aggregate tokens accepted wherever a venue key is expected.
const (
	AggregateNYC    = "all_nyc"
	AggregateLondon = "all_london"
)

// Registry is the immutable venue descriptor table with O(1) lookup.
type Registry struct {
	byKey map[string]Descriptor
	order []string
}

func NewRegistry() *Registry {
	descs := descriptors()
	r := &Registry{
		byKey: make(map[string]Descriptor, len(descs)),
		order: make([]string, 0, len(descs)),
	}
	for _, d := range descs {
		if _, dup := r.byKey[d.Key]; dup {
			panic(fmt.Sprintf("venue: duplicate descriptor key %q", d.Key))
		}
		r.byKey[d.Key] = d
		r.order = append(r.order, d.Key)
	}
	return r
}

// Lookup resolves a single concrete venue key.
func (r *Registry) Lookup(key string) (Descriptor, error) {
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownVenue, key)
	}
	return d, nil
}

// All returns every descriptor in declaration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKey[k])
	}
	return out
}

// CityKeys returns the venue keys of one city in declaration order.
func (r *Registry) CityKeys(city City) []string {
	var out []string
	for _, k := range r.order {
		if r.byKey[k].City == city {
			out = append(out, k)
		}
	}
	return out
}

// ExpandAggregate resolves an aggregate token to its city's venue keys.
// Concrete keys pass through as a single-element slice.
func (r *Registry) ExpandAggregate(key string) ([]string, error) {
	switch key {
	case AggregateNYC:
		return r.CityKeys(CityNYC), nil
	case AggregateLondon:
		return r.CityKeys(CityLondon), nil
	}
	if _, err := r.Lookup(key); err != nil {
		return nil, err
	}
	return []string{key}, nil
}

var lawnClubWebsiteOptions = map[string]string{
	"indoor_gaming": "lawn_club_nyc_indoor_gaming",
	"curling_lawns": "lawn_club_nyc_curling_lawns",
	"croquet_lawns": "lawn_club_nyc_croquet_lawns",
}

// ResolveWebsite maps an API website token to a concrete venue key. The
// lawn club token carries its variant in a separate option field; every
// other token is either an aggregate alias or a descriptor key.
func (r *Registry) ResolveWebsite(website, lawnClubOption string) (string, error) {
	switch website {
	case "all_new_york", AggregateNYC:
		return AggregateNYC, nil
	case AggregateLondon:
		return AggregateLondon, nil
	case "lawn_club_nyc":
		if lawnClubOption == "" {
			lawnClubOption = "curling_lawns"
		}
		key, ok := lawnClubWebsiteOptions[strings.ToLower(lawnClubOption)]
		if !ok {
			return "", adapters.Invalid("unsupported lawn_club_option %q", lawnClubOption)
		}
		return key, nil
	}
	if _, err := r.Lookup(website); err != nil {
		return "", err
	}
	return website, nil
}

// ValidateOptions checks caller-supplied options against the descriptor's
// enumerated schema before any job is created.
func (r *Registry) ValidateOptions(d Descriptor, opts map[string]string) error {
	for name, value := range opts {
		if value == "" {
			continue
		}
		spec, ok := optionSpec(d, name)
		if !ok {
			return adapters.Invalid("venue %s does not accept option %q", d.Key, name)
		}
		if len(spec.Values) == 0 {
			continue
		}
		norm := func(s string) string { return s }
		if spec.Normalize != nil {
			norm = spec.Normalize
		}
		matched := false
		for _, v := range spec.Values {
			if norm(v) == norm(value) {
				matched = true
				break
			}
		}
		if !matched {
			return adapters.Invalid("option %s=%q is not in the accepted set for %s", name, value, d.Key)
		}
	}
	return nil
}

func optionSpec(d Descriptor, name string) (OptionSpec, bool) {
	for _, spec := range d.Options {
		if spec.Name == name {
			return spec, true
		}
	}
	return OptionSpec{}, false
}
