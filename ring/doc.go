/*
Package ring resolves which nodes are responsible for a given content
hash. Placement walks a membership view clockwise from the hash's ring
position, using a fast non-cryptographic hash for the position itself
(content integrity hashing is a separate concern, handled upstream in
package meta).

Cluster membership is supplied by an injected Membership implementation
rather than owned here: gossip, failure detection, and node lifecycle
are out of scope for this package.
*/
package ring
