package apmec

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a resource collection of the orchestration API.
type Kind string

const (
	KindMECA  Kind = "meca"
	KindMECAD Kind = "mecad"
	KindMEA   Kind = "mea"
	KindMEAD  Kind = "mead"
	KindVIM   Kind = "vim"
	KindEvent Kind = "event"
	KindNFY   Kind = "nfy"
	KindNFYD  Kind = "nfyd"
	KindNS    Kind = "ns"
	KindNSD   Kind = "nsd"
)

type kindInfo struct {
	plural  string
	title   string
	catalog Kind
}

var kinds = map[Kind]kindInfo{
	KindMECA:  {plural: "mecas", title: "MEC application", catalog: KindMECAD},
	KindMECAD: {plural: "mecads", title: "MECA catalog entry"},
	KindMEA:   {plural: "meas", title: "MEC app", catalog: KindMEAD},
	KindMEAD:  {plural: "meads", title: "MEA catalog entry"},
	KindVIM:   {plural: "vims", title: "VIM"},
	KindEvent: {plural: "events", title: "event"},
	KindNFY:   {plural: "nfys", title: "forwarding path", catalog: KindNFYD},
	KindNFYD:  {plural: "nfyds", title: "forwarding path descriptor"},
	KindNS:    {plural: "nss", title: "network service", catalog: KindNSD},
	KindNSD:   {plural: "nsds", title: "network service descriptor"},
}

// ParseKind resolves a kind from its name or its plural collection name,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := kinds[Kind(s)]; ok {
		return Kind(s), nil
	}
	for k, info := range kinds {
		if info.plural == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource kind %q (expected one of: %s)", s, strings.Join(KindNames(), ", "))
}

// Kinds returns all known kinds in name order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KindNames returns the names of all known kinds in name order.
func KindNames() []string {
	ks := Kinds()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = string(k)
	}
	return names
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Singular is the envelope key of a single resource, e.g. {"meca": {...}}.
func (k Kind) Singular() string { return string(k) }

// Plural is the collection path segment and list envelope key.
func (k Kind) Plural() string { return kinds[k].plural }

// Title is a human readable name.
func (k Kind) Title() string {
	if t := kinds[k].title; t != "" {
		return t
	}
	return string(k)
}

// Catalog returns the descriptor kind instances of k are deployed from, or ""
// if k is not deployable.
func (k Kind) Catalog() Kind { return kinds[k].catalog }

// Deployable reports whether instances of k are created from a catalog entry.
func (k Kind) Deployable() bool { return k.Catalog() != "" }

// CatalogField is the attribute naming the catalog entry, e.g. "mecad_id".
func (k Kind) CatalogField() string {
	if c := k.Catalog(); c != "" {
		return string(c) + "_id"
	}
	return ""
}
