package extractor

// ColumnHeaderCell is one header-row contribution to a synthesised column
// name, keeping the originating row so callers can explain the name.
type ColumnHeaderCell struct {
	Row   int    `json:"row"`
	Value string `json:"value"`
}

// Column describes one surviving column of a discovered table.
type Column struct {
	TableColumn  int                `json:"table_column"`
	ColumnHeader []ColumnHeaderCell `json:"column_header"`
}

// AggregationInfo describes one aggregation row inside a table's data body.
type AggregationInfo struct {
	Label              string `json:"label"`
	Phrase             string `json:"phrase"`
	AggregationFunction string `json:"function"`
}

// FDLConfidence carries the first-data-line prediction's composite scoring
// breakdown (§3 data model).
type FDLConfidence struct {
	AvgMajorityConfidence float64 `json:"avg_majority_confidence"`
	AvgDifference         float64 `json:"avg_difference"`
	AvgConfusionIndex     float64 `json:"avg_confusion_index"`
	Softmax               float64 `json:"softmax"`
}

// Table is the emitted record for one discovered table (§3 "Table record").
type Table struct {
	TopBoundary       int                     `json:"top_boundary"`
	BottomBoundary    int                     `json:"bottom_boundary"`
	DataStart         int                     `json:"data_start"`
	DataEnd           int                     `json:"data_end"`
	Header            []int                   `json:"header"`
	Footnotes         []int                   `json:"footnotes"`
	SubheaderScope    map[int][]int           `json:"subheader_scope"`
	AggregationScope  map[int]AggregationInfo `json:"aggregation_scope"`
	Columns           map[int]Column          `json:"columns"`
	FDLConfidence     FDLConfidence           `json:"fdl_confidence"`
	DataEndConfidence float64                 `json:"data_end_confidence"`
}

// FileResult is the per-file output record (§6 Outputs).
type FileResult struct {
	BlankLines               []int   `json:"blanklines"`
	LinesProcessed           int     `json:"lines_processed"`
	ColumnsInFile            int     `json:"columns_in_file"`
	ColumnsInFileConsidered  int     `json:"columns_in_file_considered"`
	Tables                   []Table `json:"tables"`
}
