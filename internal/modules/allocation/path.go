package allocation

import (
	"fmt"
	"strings"

	"github.com/aristath/rebalancer/internal/domain"
)

const (
	// FlatSegment is the pseudo-sector holding the instruments of classes without a sector tier
	FlatSegment = "_flat"
	// CapKey is the reserved sector_targets entry that stores the equity cap weights
	CapKey = "_cap"

	keySeparator = ':'
	keyEscape    = '\\'
)

// Path identifies a node of the target hierarchy:
//
//	class                 equity, realEstateFund, ...
//	class:cap             equity only
//	class:sector          realEstateFund only
//	class:cap:sector      equity only
//	class:_flat           exchangeTradedFund, fixedIncome
//
// Sector weights are stored under the path of their parent (class or class:cap) and
// instrument weights under the path of their sector (or class:_flat).
type Path struct {
	Class  domain.AssetClass
	Cap    domain.CapBucket
	Sector string
	Flat   bool
}

// ClassPath returns the root path of a class
func ClassPath(class domain.AssetClass) Path {
	return Path{Class: class}
}

// CapPath returns the path of an equity cap tier
func CapPath(bucket domain.CapBucket) Path {
	return Path{Class: domain.AssetClassEquity, Cap: bucket}
}

// FlatPath returns the pseudo-sector path of a flat class
func FlatPath(class domain.AssetClass) Path {
	return Path{Class: class, Flat: true}
}

// SectorPath returns the path of sector below parent
func SectorPath(parent Path, sector string) Path {
	parent.Sector = sector
	return parent
}

// Segments returns the unescaped path segments
func (p Path) Segments() []string {
	segs := []string{string(p.Class)}
	if p.Cap != "" {
		segs = append(segs, string(p.Cap))
	}
	switch {
	case p.Flat:
		segs = append(segs, FlatSegment)
	case p.Sector != "":
		segs = append(segs, p.Sector)
	}
	return segs
}

// Key encodes the path as a compound key
func (p Path) Key() string {
	segs := p.Segments()
	for i, seg := range segs {
		segs[i] = escapeSegment(seg)
	}
	return strings.Join(segs, string(keySeparator))
}

func (p Path) String() string {
	return p.Key()
}

// IsSectorParent reports whether sector weights can be stored under p
func (p Path) IsSectorParent() bool {
	switch p.Class {
	case domain.AssetClassEquity:
		return p.Cap != "" && p.Sector == "" && !p.Flat
	case domain.AssetClassRealEstateFund:
		return p.Cap == "" && p.Sector == "" && !p.Flat
	}
	return false
}

// IsLeafParent reports whether instrument weights can be stored under p
func (p Path) IsLeafParent() bool {
	switch p.Class {
	case domain.AssetClassEquity:
		return p.Cap != "" && p.Sector != ""
	case domain.AssetClassRealEstateFund:
		return p.Cap == "" && p.Sector != ""
	case domain.AssetClassExchangeTradedFund, domain.AssetClassFixedIncome:
		return p.Flat
	}
	return false
}

// ParsePath decodes a compound key and checks it against the class hierarchy
func ParsePath(key string) (Path, error) {
	segs, err := splitKey(key)
	if err != nil {
		return Path{}, err
	}

	class, ok := domain.ParseAssetClass(segs[0])
	if !ok || segs[0] != string(class) {
		return Path{}, fmt.Errorf("%w: %q: unknown class %q", ErrInvalidKey, key, segs[0])
	}
	p := Path{Class: class}
	rest := segs[1:]

	invalid := func() (Path, error) {
		return Path{}, fmt.Errorf("%w: %q does not fit the %s hierarchy", ErrInvalidKey, key, class)
	}

	switch class {
	case domain.AssetClassEquity:
		if len(rest) > 2 {
			return invalid()
		}
		if len(rest) >= 1 {
			bucket := domain.CapBucket(rest[0])
			if !bucket.Valid() {
				return invalid()
			}
			p.Cap = bucket
		}
		if len(rest) == 2 {
			if !validSector(rest[1]) {
				return invalid()
			}
			p.Sector = rest[1]
		}
	case domain.AssetClassRealEstateFund:
		if len(rest) > 1 {
			return invalid()
		}
		if len(rest) == 1 {
			if !validSector(rest[0]) {
				return invalid()
			}
			p.Sector = rest[0]
		}
	default:
		if len(rest) > 1 || (len(rest) == 1 && rest[0] != FlatSegment) {
			return invalid()
		}
		p.Flat = len(rest) == 1
	}
	return p, nil
}

func validSector(s string) bool {
	return s != "" && s != FlatSegment && s != CapKey
}

func escapeSegment(s string) string {
	if !strings.ContainsAny(s, `:\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == keySeparator || r == keyEscape {
			b.WriteRune(keyEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitKey(key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	var (
		segs    []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range key {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == keyEscape:
			escaped = true
		case r == keySeparator:
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: %q ends with a dangling escape", ErrInvalidKey, key)
	}
	return append(segs, cur.String()), nil
}
