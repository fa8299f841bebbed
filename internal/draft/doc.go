// Package draft bridges continuous user input to discrete note commits and
// persistence writes.
//
// A Controller keeps an editable draft of the selected note next to the
// engine's committed copy. Under the manual policy the draft is committed
// only by Save or by resolving an unsaved-changes Decision; under the
// debounced policy each field is also committed after a quiet period.
// Navigation away from a dirty draft is never applied silently: the intent
// returns a Decision that the presentation layer resolves with Discard, Save
// or Cancel.
//
// All public methods are safe for concurrent use. One mutex serializes user
// intents, debounce firings and startup; saves run on their own goroutines
// and report through the state.Store.
package draft
