package site

// Stage names for the single-pass build pipeline. Stages run strictly in this
// order with no backward transitions; a full rebuild always starts from
// scanning.
const (
	StageScanning   = "scanning"
	StageIndexing   = "indexing"
	StagePaginating = "paginating"
	StageRendering  = "rendering"
)
