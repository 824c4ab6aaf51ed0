// Package claimflow synchronizes insurance claim state with an external
// case/process orchestration engine.
//
// The engine executes the claims workflow (approval, assessment, payment);
// claimflow owns the claim records and keeps both sides consistent through:
//
//   - orchestrator – claim write operations (create, review, approve, pay)
//   - sync         – plan-item lifecycle notifications to status updates
//   - payment      – payment sub-workflow events to payment status
//   - resolver     – notification to claim correlation
//
// Claimflow is designed to be embedded in host applications. End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	srv := claimflow.New()
//	rt := srv.Runtime()
//	rt.Start()
//	c, _ := rt.Orchestrator().Create(ctx, input)
//
// For more details see the individual sub-packages.
package claimflow
