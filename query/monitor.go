package query

import "github.com/poiesic/chatvault/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during multi-query
// fusion retrieval.
type RetrievalMonitor interface {
	Start(question string)
	AfterClassification(classification Classification)
	AfterVariations(variations []string)
	VariationSucceeded(variation string, ids []core.ID)
	VariationFailed(variation string, err error)
	FilterFallback(filtered int)
	AfterFusion(fused []core.RetrievalResult)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterClassification(_ Classification)      {}
func (n *noopMonitor) AfterVariations(_ []string)                {}
func (n *noopMonitor) VariationSucceeded(_ string, _ []core.ID)  {}
func (n *noopMonitor) VariationFailed(_ string, _ error)         {}
func (n *noopMonitor) FilterFallback(_ int)                      {}
func (n *noopMonitor) AfterFusion(_ []core.RetrievalResult)      {}
func (n *noopMonitor) Finish(_ []Result)                         {}
