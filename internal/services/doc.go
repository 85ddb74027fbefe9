// Package services carries the cross-cutting plumbing shared by every
// external-facing component: sentinel error markers for failure
// classification and context annotations that flow into structured logs.
package services
