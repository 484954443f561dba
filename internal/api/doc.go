// Package api exposes the live notification socket and the health probe.
// Recipients are authenticated upstream; handlers read the recipient id the
// gateway forwards and hand connections to the notify registry.
package api
