// Package network defines the directed, immutable-after-load road graph
// that the landmark precomputer (package landmark) and the incremental A*
// router (package router) operate on, plus the XML loader that builds one
// from a SUMO-style topology file.
package network
