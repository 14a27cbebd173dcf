// Package harvester coordinates a harvest run end to end: identifier
// loading, outstanding-set computation, the concurrent fetch pool,
// checkpointing, and the final merge.
//
// "Done" is defined purely by presence: an identifier found in any
// readable batch part or the consolidated output is not fetched again,
// whether its recorded status is ok or error. The retry_errors setting
// relaxes this for error records. Beyond the files on disk there is no
// persisted run state, which is what makes interruption at any point
// safe.
package harvester
