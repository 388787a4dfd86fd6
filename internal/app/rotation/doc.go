// Package rotation holds the turn-rotation rules: who may advance a group's
// turn, who may nudge, who may delete, and which notification each legal
// action produces.
//
// Everything here is pure. The Engine never touches storage; ids and time
// come from the functions it is constructed with, so callers (and tests)
// fully control both. Persisting the resulting group and delivering the
// resulting Notice is the caller's job.
package rotation
