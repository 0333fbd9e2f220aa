package engine

import "errors"

// errBackwardExtension is the sentinel returned by a cache's ensure_*
// when a request would require growing the cache's lower bound. Per the
// design's recommended policy, no cache in this engine supports that; the
// engine wraps this into a Structural error naming the offending id.
var errBackwardExtension = errors.New("backward cache extension is not supported")

// errNoGoverningTag is returned when walking a Filter/Distinct's parent
// chain never reaches a Tag.
var errNoGoverningTag = errors.New("no governing tag found in parent chain")

// errUnknownID is returned when an id does not name a registered artifact.
var errUnknownID = errors.New("unknown identifier")

// errWrongKind is returned when an operation is applied to an id of the
// wrong kind (e.g. Regex on a FileId).
var errWrongKind = errors.New("operation not valid for this identifier kind")

// errPlanRoot is returned when a plan does not resolve to a File at its
// root.
var errPlanRoot = errors.New("plan must be rooted at a file")
