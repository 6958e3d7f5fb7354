// Package connectors holds document sources. Each source knows how to
// enumerate and read documents from one kind of location and hands them to
// the ingestion service; only the local filesystem is supported.
package connectors
