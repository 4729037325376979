// Package services implements the business logic layer of the cohort
// reporting application. It provides a clean separation between HTTP
// handlers and the underlying pipeline stages, ensuring that business
// rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides one core service:
//
//	- ReportService: orchestrates fetching the raw sales tables,
//	  running the cohort engine, rendering the report matrices and
//	  delivering the finished files
//
// # Testing
//
// Services are tested by substituting fakes for their dependencies:
//
//	svc := NewReportService(Deps{Uploads: fakeClient, ...})
//	summary, err := svc.Generate(ctx, "rec-1", "")
package services
