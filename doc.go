// Package bag contains the core contracts of Sif's grouped-data stage. After a shuffle
// groups records by key, each group is handed to downstream operators as a Bag of value
// Tuples. This root package defines the Bag contract shared by every Bag variant, the
// Packager which reconstructs value Tuples from raw shuffle records, and the value types
// which flow between them. Implementations live in the bags, packager and group packages.
package bag
