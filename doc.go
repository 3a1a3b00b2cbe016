// Package typedstream provides a pure Go decoder for Apple's typedstream
// binary archive format.
//
// typedstream is the legacy NeXTSTEP/Cocoa serialization NSArchiver used to
// persist Objective-C object graphs before NSKeyedArchiver. It is still
// produced today by Messages.app and stored in the attributedBody column of
// the iMessage chat.db SQLite database. The format is undocumented outside
// reverse-engineering notes: it interns types and objects into two parallel
// back-reference tables, uses variable-width integer encodings, and
// reconstructs Objective-C class inheritance chains alongside their
// instance data.
//
// This package decodes version-4 "streamtyped" archives (system version
// 1000) into a flat, language-neutral sequence of [Archivable] values —
// object instances tagged by class and version, free value lists, and bare
// class markers.
//
// # Quick Start
//
//	vals, err := typedstream.Decode(blob)
//	for _, v := range vals {
//	    if text, ok := v.StringValue(); ok {
//	        fmt.Println(text)
//	    }
//	}
//
// # Decoder Options
//
// For advanced usage, create a [Decoder] with options:
//
//	dec := typedstream.NewDecoder(
//	    typedstream.WithStrict(true),
//	)
//	vals, err := dec.Decode(blob)
//
// # Sub-packages
//
// The imessage sub-package queries the iMessage chat.db schema and hands
// each row's attributedBody BLOB to this package. The imessage/attrcache
// sub-package caches decoded results behind a memcached-compatible store.
package typedstream
