// Package snapshot records remote fetches to JSON files and replays them.
//
// Recorder wraps a live collection and saves every fetch result under the
// snapshot directory. Replayer serves fetches from those files and turns
// every mutation into a logged no-op, which makes an offline run a dry run.
package snapshot
