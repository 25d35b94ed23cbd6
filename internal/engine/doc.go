// Package engine decides, once per tick, whether to fire the outbound call.
//
// The decision chain short-circuits at the first blocking check:
// quota -> vacation -> business window -> day skip -> hour skip ->
// micro break -> activity sample. A passing tick also carries a jitter
// delay the caller must apply before invoking the endpoint.
//
// Two kinds of randomness are kept strictly apart:
//   - period-seeded: derived from a period key (week/day/hour) so every
//     tick inside that period sees the same verdict, across restarts,
//     without persisting anything
//   - fresh: a locally constructed source drawn per tick, for the gates
//     whose whole point is unpredictability
//
// The package is pure: no I/O, no wall-clock reads, no global rand.
package engine
