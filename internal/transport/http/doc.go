// Package http implements HTTP request handlers for the cohort reporting
// service. It provides a thin layer between HTTP transport and business
// logic, following the clean architecture principle of keeping handlers
// focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Pipeline
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/report/schema",
//	    "title": "Table Schema Invalid",
//	    "status": 422,
//	    "detail": "table shop_a.csv: missing column customer_email",
//	    "instance": "/api/reports/generate"
//	}
//
// # Testing
//
// Handlers are tested using httptest with fake service dependencies.
package http
