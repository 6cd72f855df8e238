package providers

import (
	"fmt"
	"net/url"
	"strings"
)

// Registry maps entry URLs to the adapter that recognizes them. It is
// immutable once built and safe for concurrent lookups.
type Registry struct {
	adapters []Adapter
}

// NewRegistry validates that every declared host is recognized by exactly
// one adapter, so overlapping rules fail here rather than at dispatch time.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	names := map[string]bool{}

	for _, a := range adapters {
		if names[a.Name()] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrAmbiguousAdapters, a.Name())
		}
		names[a.Name()] = true

		if len(a.Hosts()) == 0 {
			return nil, fmt.Errorf("adapter %q declares no hosts", a.Name())
		}

		for _, h := range a.Hosts() {
			hostURL := "https://" + h + "/"
			var claimed []string
			for _, other := range adapters {
				if other.Recognize(hostURL) {
					claimed = append(claimed, other.Name())
				}
			}

			if len(claimed) != 1 || claimed[0] != a.Name() {
				return nil, fmt.Errorf("%w: host %s claimed by [%s]",
					ErrAmbiguousAdapters, h, strings.Join(claimed, ", "))
			}
		}
	}

	out := make([]Adapter, len(adapters))
	copy(out, adapters)

	return &Registry{adapters: out}, nil
}

func (r *Registry) Resolve(rawURL string) (Adapter, error) {
	var found []Adapter
	for _, a := range r.adapters {
		if a.Recognize(rawURL) {
			found = append(found, a)
		}
	}

	switch len(found) {
	case 0:
		return nil, &UnsupportedSiteError{URL: rawURL}
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matches %d adapters", ErrAmbiguousAdapters, rawURL, len(found))
	}
}

func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)

	return out
}

// MatchHost reports whether rawURL is an http(s) URL on one of hosts.
func MatchHost(rawURL string, hosts ...string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u == nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		if host == strings.ToLower(h) {
			return true
		}
	}

	return false
}
