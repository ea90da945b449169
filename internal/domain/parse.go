package domain

// ParseError describes one recoverable problem encountered while parsing a
// CSV batch. Errors are accumulated, never returned as a failure: a bad row
// must not abort the rows around it.
type ParseError struct {
	Row         int               `json:"row"`              // 1-based, header counted as row 1; 0 for file-level errors
	Column      string            `json:"column,omitempty"` // failing column name, when known
	Message     string            `json:"message"`
	OriginalRow map[string]string `json:"original_row,omitempty"` // column name -> raw value
}

// ParseResult is the outcome of parsing one CSV file. Transactions and
// errors are independent lists; len(Transactions) always equals SuccessCount.
type ParseResult struct {
	Transactions   []ParsedTransaction `json:"transactions"`
	Errors         []ParseError        `json:"errors"`
	TotalRows      int                 `json:"total_rows"` // data rows, header excluded
	SuccessCount   int                 `json:"success_count"`
	ErrorCount     int                 `json:"error_count"`
	DetectedFormat string              `json:"detected_format"`
}
