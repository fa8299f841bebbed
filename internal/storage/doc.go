// Package storage persists Quill's note collection as a single snapshot blob
// stored under a fixed key.
//
// Every backend writes the full snapshot in one atomic step: FileStore via a
// temp file and rename, BoltStore inside one bbolt transaction, MemoryStore by
// swapping a byte slice. There are no partial writes, so no field-level
// locking is needed.
//
// Loads fail soft. A missing blob yields the empty default snapshot with no
// error; an unreadable blob yields the default snapshot plus an error that
// callers only report. File and bolt backends keep a copy of an unreadable
// blob under a ".corrupt-<unix>" name.
//
// The blob is JSON:
//
//	{"notes":[{"id":"…","title":"…","content":"…","updatedAt":1700000000000}],
//	 "selectedId":"…","theme":"dark","lastWriteBy":"host-1a2b3c4d"}
//
// updatedAt is Unix milliseconds; selectedId and lastWriteBy are null when
// unset.
package storage
