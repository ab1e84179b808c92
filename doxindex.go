// Package doxindex provides a local, CLI-based lookup tool for the search
// tables that documentation generators emit for their client-side search box.
// It loads those tables, answers prefix lookups over them, and keeps imported
// tables in a local catalog.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, bleve/).
package doxindex
