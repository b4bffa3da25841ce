package application

import "expvar"

// Counters published on /api/debug/vars.
var (
	resourcesCreated = expvar.NewInt("resources_created")
	ratingsRecorded  = expvar.NewInt("ratings_recorded")
	searchesServed   = expvar.NewInt("searches_served")
)
