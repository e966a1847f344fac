// Package registry holds the catalog of known experiences. The catalog is
// fetched once from the data service and is never refreshed; lookups are
// served from memory.
package registry
