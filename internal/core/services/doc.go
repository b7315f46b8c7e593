// Package services implements the document-sync pipeline: the bounded work
// queue between fetch and index pools, the sync orchestrator, the indexing
// consumers, and the deletion and permission reconcilers.
package services
