// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Classify and ApplyDeletionPlan are the two pieces the rest hangs on:
// Classify is pure, and ApplyDeletionPlan is the only code that turns a
// frozen snapshot's positions into live delete calls.
package services
