// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package macro

import "strconv"

// Params is an ordered mapping of macro parameters. Setting an existing key
// replaces its value but keeps its original position.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams builds Params from key/value pairs given in order.
func NewParams(pairs ...string) Params {
	var p Params
	for i := 0; i+1 < len(pairs); i += 2 {
		p.set(pairs[i], pairs[i+1])
	}
	return p
}

func (p *Params) set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value of key, or "" when absent.
func (p Params) Get(key string) string {
	return p.values[key]
}

// Lookup returns the value of key and whether it is present.
func (p Params) Lookup(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of parameters.
func (p Params) Len() int {
	return len(p.keys)
}

// Int parses key as an integer, returning fallback when absent or invalid.
func (p Params) Int(key string, fallback int) int {
	v, ok := p.values[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Map returns a copy of the parameters as a plain map.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
