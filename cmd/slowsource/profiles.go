package main

// profiles maps preset link names to downstream rates in bytes per second.
var profiles = map[string]int64{
	// Serial connections
	"9600": 960, // 9600 baud / 10 bits per byte
	"2400": 240,

	// Dial-up modems
	"dialup": 56000 / 8, // 56kbit

	// Mobile networks
	"edge":     200000 / 8,   // 200kbit
	"3g":       1000000 / 8,  // 1mbit
	"lte":      20000000 / 8, // 20mbit
	"lte-poor": 2000000 / 8,  // 2mbit

	// Wired connections
	"dsl":   8000000 / 8,  // 8mbit
	"cable": 50000000 / 8, // 50mbit

	// Satellite
	"satellite":     25000000 / 8, // Starlink-ish
	"satellite-geo": 10000000 / 8, // Traditional VSAT

	// WiFi scenarios
	"wifi-poor": 2000000 / 8,
	"wifi-bad":  500000 / 8,
}
