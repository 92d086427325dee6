package model

// SheetDescriptor is the metadata view of one worksheet: column names as the
// metadata reader saw them, total data row count, and a bounded sample of
// rows. Cell values in the sample are pre-truncated by the reader.
type SheetDescriptor struct {
	Name       string     `json:"name"`
	Columns    []string   `json:"columns"`
	RowCount   int        `json:"row_count"`
	SampleRows [][]string `json:"sample_rows,omitempty"`
}

// Chunk groups whole sheets for a single structure-analysis call. A sheet is
// never split across chunks; an oversized sheet travels alone.
type Chunk struct {
	Sheets         []SheetDescriptor `json:"sheets"`
	EstimatedChars int               `json:"estimated_chars"`
}

// ColumnRole names a semantic column identified by structure analysis.
type ColumnRole string

const (
	RoleQuestion         ColumnRole = "question_column"
	RoleAnswer           ColumnRole = "answer_column"
	RoleAnswerOptions    ColumnRole = "answer_options_column"
	RoleType             ColumnRole = "type_column"
	RoleInstruction      ColumnRole = "instruction_column"
	RoleAdditionalAnswer ColumnRole = "additional_answer_column"
	RoleFollowup         ColumnRole = "followup_column"
)

// ColumnRoleOrder is the resolution and rendering order for column roles.
// The question column comes first because it is the only mandatory one.
var ColumnRoleOrder = []ColumnRole{
	RoleQuestion,
	RoleAnswer,
	RoleAnswerOptions,
	RoleType,
	RoleInstruction,
	RoleAdditionalAnswer,
	RoleFollowup,
}

// ColumnRoles maps roles to the column names structure analysis returned.
// Names follow whatever convention the analysis model used, which may not
// match the row-accurate reader's headers.
type ColumnRoles map[ColumnRole]string

// SheetStructure is the structure-analysis result for one sheet.
type SheetStructure struct {
	SheetName    string      `json:"sheet_name"`
	HeaderRow    int         `json:"header_row"`
	DataStartRow int         `json:"data_start_row"`
	Columns      ColumnRoles `json:"columns"`
	Notes        string      `json:"notes,omitempty"`
	Confidence   float64     `json:"confidence"`
}

// StructureInfo aggregates structure analysis across all chunks. Confidence
// is the average over chunks that produced a parseable response.
type StructureInfo struct {
	Sheets     []SheetStructure `json:"sheets"`
	Confidence float64          `json:"confidence"`
}

// ResolvedColumns maps roles to zero-based indices into the row-accurate
// header row, plus the header text as it literally appears there.
type ResolvedColumns struct {
	Indices      map[ColumnRole]int    `json:"indices"`
	DisplayNames map[ColumnRole]string `json:"display_names"`
}

// Index returns the resolved index for a role, or -1 when unresolved.
func (r ResolvedColumns) Index(role ColumnRole) int {
	if idx, ok := r.Indices[role]; ok {
		return idx
	}
	return -1
}

// QuestionGroup is one question row plus the answer options accumulated from
// its continuation rows during the gap-tolerant lookahead scan.
type QuestionGroup struct {
	Row     int      `json:"row"`
	EndRow  int      `json:"end_row"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// RowBatch is a bounded window of one sheet's data rows rendered for a
// single extraction call. Ephemeral; never persisted.
type RowBatch struct {
	SheetName    string          `json:"sheet_name"`
	Table        string          `json:"table"`
	Roles        ResolvedColumns `json:"roles"`
	Groups       []QuestionGroup `json:"groups,omitempty"`
	StartRow     int             `json:"start_row"`
	EndRow       int             `json:"end_row"`
	BatchNum     int             `json:"batch_num"`
	TotalBatches int             `json:"total_batches"`
}

// CoverageInfo is the advisory coverage-validation verdict. It never gates
// the pipeline.
type CoverageInfo struct {
	IsComplete      bool     `json:"is_complete"`
	Confidence      float64  `json:"confidence"`
	MissingElements []string `json:"missing_elements,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// DefaultCoverage is the substitute verdict used when the coverage call
// fails or returns nothing parseable.
func DefaultCoverage() CoverageInfo {
	return CoverageInfo{IsComplete: true, Confidence: 0.5}
}
