// Package channel holds the fixed sales channel table and aggregates
// forecast lines into per-product channel buckets.
package channel

import (
	"sort"
	"strings"
)

// Count is the number of canonical channel buckets.
const Count = 12

var canonical = [Count]string{
	"PX/大全聯",
	"家樂福",
	"愛買",
	"711",
	"全家",
	"OK/萊爾富",
	"好市多",
	"楓康",
	"美聯社",
	"康是美",
	"電商",
	"市面經銷",
}

var aliases = map[string]string{
	"7-11": "711",
	"萊爾富":  "OK/萊爾富",
	"OK超商": "OK/萊爾富",
	"美廉社":  "美聯社",
}

var buckets = func() map[string]int {
	m := make(map[string]int, Count+len(aliases))
	for i, name := range canonical {
		m[name] = i
	}
	for alias, name := range aliases {
		m[alias] = m[name]
	}
	return m
}()

// Info describes a canonical channel and the aliases that collapse into it.
type Info struct {
	Bucket  int      `json:"bucket"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Lookup returns the bucket index for a canonical name or alias.
func Lookup(name string) (int, bool) {
	i, ok := buckets[strings.TrimSpace(name)]
	return i, ok
}

// Valid reports whether name is a canonical channel or a known alias.
func Valid(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Canonical resolves an alias to its canonical name.
func Canonical(name string) (string, bool) {
	i, ok := Lookup(name)
	if !ok {
		return "", false
	}
	return canonical[i], true
}

// Names returns the canonical names in bucket order.
func Names() []string {
	out := make([]string, Count)
	copy(out, canonical[:])
	return out
}

// List returns the channel table for display.
func List() []Info {
	out := make([]Info, Count)
	for i, name := range canonical {
		out[i] = Info{Bucket: i, Name: name}
	}
	for alias, name := range aliases {
		i := buckets[name]
		out[i].Aliases = append(out[i].Aliases, alias)
	}
	for i := range out {
		sort.Strings(out[i].Aliases)
	}
	return out
}
