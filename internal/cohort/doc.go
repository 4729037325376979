// Package cohort implements the customer-cohort analytics engine: it
// normalizes heterogeneous raw transaction tables into a canonical schema,
// derives each customer's first-purchase anchor, labels rows under two cohort
// policies (first-purchase month, first product purchased), and aggregates
// per-cohort LTV, revenue, and repeat-purchase-rate matrices.
//
// The engine is pure: it receives already-fetched tables, owns all
// intermediate data for the duration of one run, and performs no I/O. Client
// construction for the uploads store and the report webhook lives in the
// fetch and emit packages.
package cohort
