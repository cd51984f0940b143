// Package api provides the asset workflow REST API: template and step
// administration, workflow state transitions, and bulk backfill, served
// under /api/v1 behind X-API-Key authentication.
package api
