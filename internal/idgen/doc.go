// Package idgen hands out run and item identifiers backed by random UUIDs.
package idgen
