// Package thermal remaps raw battery temperature channels onto per-layer
// module grids and aggregates them into frame statistics.
//
// A dataset is a RawMatrix (rows are sensors, columns are samples) plus one
// SensorRecord per row. A LayoutOrder names, in display order, which sensor
// sits at each grid cell; layers are concatenated back to back and layer L
// occupies 4*ModulesPerLayer[L]*4 entries, drawn as a 4 x 4*modules grid.
//
// Resolve turns a layout into an IndexMap once; AggregateFrame then builds a
// FrameResult for any time index without further lookups. Session holds the
// active resolved layout and lets callers swap layouts atomically while a
// Player drives the time index.
//
// Missing data is NaN throughout. Every statistic ignores NaN and an all-NaN
// input yields NaN rather than an error.
package thermal
