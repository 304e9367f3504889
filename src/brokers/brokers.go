// Package brokers maps broker names, as typed in position records, to display metadata.
package brokers

import (
	"sort"
	"strings"
)

// Info is the display metadata of a broker.
type Info struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	ShortName   string `json:"shortName"`
	Country     string `json:"country"`
	Color       string `json:"color"`
}

// OtherKey is the key of the fallback entry for unknown brokers.
const OtherKey = "other"

var known = []Info{
	{Key: "sbi", DisplayName: "SBI Securities", ShortName: "SBI", Country: "JP", Color: "#0061B0"},
	{Key: "rakuten", DisplayName: "Rakuten Securities", ShortName: "Rakuten", Country: "JP", Color: "#BF0000"},
	{Key: "monex", DisplayName: "Monex Securities", ShortName: "Monex", Country: "JP", Color: "#F39800"},
	{Key: "matsui", DisplayName: "Matsui Securities", ShortName: "Matsui", Country: "JP", Color: "#00873C"},
	{Key: "ibkr", DisplayName: "Interactive Brokers", ShortName: "IBKR", Country: "US", Color: "#D81222"},
	{Key: "schwab", DisplayName: "Charles Schwab", ShortName: "Schwab", Country: "US", Color: "#00A0DF"},
	{Key: "fidelity", DisplayName: "Fidelity Investments", ShortName: "Fidelity", Country: "US", Color: "#368727"},
	{Key: "vanguard", DisplayName: "Vanguard", ShortName: "Vanguard", Country: "US", Color: "#96151D"},
	{Key: "robinhood", DisplayName: "Robinhood", ShortName: "Robinhood", Country: "US", Color: "#00C805"},
	{Key: "degiro", DisplayName: "DEGIRO", ShortName: "DEGIRO", Country: "NL", Color: "#00A2E1"},
	{Key: "trading212", DisplayName: "Trading 212", ShortName: "T212", Country: "GB", Color: "#1E4DD8"},
	{Key: "saxo", DisplayName: "Saxo Bank", ShortName: "Saxo", Country: "DK", Color: "#0A1E3C"},
	{Key: "etoro", DisplayName: "eToro", ShortName: "eToro", Country: "IL", Color: "#13C636"},
	{Key: "binance", DisplayName: "Binance", ShortName: "Binance", Country: "", Color: "#F0B90B"},
}

var aliases = map[string]string{
	"sbi securities":       "sbi",
	"sbi証券":                "sbi",
	"rakuten securities":   "rakuten",
	"楽天証券":                 "rakuten",
	"monex securities":     "monex",
	"マネックス証券":              "monex",
	"matsui securities":    "matsui",
	"interactive brokers":  "ibkr",
	"ib":                   "ibkr",
	"charles schwab":       "schwab",
	"fidelity investments": "fidelity",
	"trading 212":          "trading212",
	"saxo bank":            "saxo",
}

var byKey = func() map[string]Info {
	m := make(map[string]Info, len(known))
	for _, b := range known {
		m[b.Key] = b
	}
	return m
}()

// Lookup resolves a broker name or alias, ignoring case and surrounding spaces.
// Unknown names get the "other" key and keep the input as display name.
func Lookup(name string) Info {
	trimmed := strings.TrimSpace(name)
	norm := strings.ToLower(trimmed)

	if info, ok := byKey[norm]; ok {
		return info
	}
	if key, ok := aliases[norm]; ok {
		return byKey[key]
	}

	display := trimmed
	if display == "" {
		display = "Other"
	}
	return Info{Key: OtherKey, DisplayName: display, ShortName: display, Color: "#9E9E9E"}
}

// All returns every known broker ordered by key.
func All() []Info {
	out := make([]Info, len(known))
	copy(out, known)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
