// Package resilience provides the Bulkhead used to bound how many
// background process runs execute at the same time.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "workers", MaxConcurrent: 4})
//	nb := process.NewNonBlocking(exe, process.WithBulkhead(bh))
package resilience
