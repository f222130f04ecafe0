// Package sim provides the core discrete-event simulation engine for a
// distributed, multi-backend simulator of networks of multi-compartment
// biophysical neurons.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - ids.go: GID/LID/Endpoint identifiers and the Connection type
//   - spike.go, epoch.go: the wire types that flow between cell groups
//   - recipe.go: the pull-model network description
//   - domain.go: domain decomposition (rank + group assignment)
//   - cellgroup.go: the abstract cell-group stepper contract
//   - communicator.go: connection table construction and spike-to-event routing
//   - driver.go: the epoch loop that overlaps spike exchange with advance
//
// # Architecture
//
// sim defines the interfaces and the driver; concrete collaborators live in
// sibling packages:
//   - transport/: distributed transport implementations (in-process, dry-run, multi-rank)
//   - sim/trace/: decision/epoch trace recording, no dependency on sim
//
// Morphology parsing, mechanism instantiation, and numerical cell integration
// are out of scope; CellGroup implementations in this package (LIF, spike
// source) are minimal reference kinds sufficient to drive and test the
// scheduling core, not a cable-equation solver.
package sim
