// Package channels maintains same-as links between equivalent broadcast
// channels.
//
// Each publisher is handled by one Updater. SourceSpecificUpdater searches
// channels from candidate publishers with a Matcher; ForcedUpdater follows a
// hand-maintained YAML mapping keyed by a station alias. Router dispatches a
// channel to the updater registered for its publisher.
//
// All link mutations go through Linker, which keeps persisted links symmetric:
// a link is removed only when the other side still points back, and a new link
// first clears any different link held by either side. Linker serializes its
// read-modify-write cycles so concurrent updates touching the same channel
// cannot interleave.
package channels
