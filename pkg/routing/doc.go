// Package routing holds the rotation pointer that decides which instance a
// request tries first, and the in-memory statistics exposed on /stats.
//
// A request reads the pointer once, walks AttemptOrder from it, and writes
// the pointer once when it finishes: one past the instance that succeeded,
// or one past its own start when every instance failed.
package routing
