// Package record defines Record, the unit persisted per scope, and the codecs used
// to store records in byte oriented stores.
//
// A record is a flat field map. Writers only ever merge fields into a record, they
// never remove fields, so unrelated fields written by other bindings survive.
package record
