package pdf

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// PDFExtractTextRequest represents a request to extract the text of a document
type PDFExtractTextRequest struct {
	Path string `json:"path"`
	// Primary overrides the configured primary strategy ("fast" or "detailed").
	Primary string `json:"primary,omitempty"`
}

// PDFInspectRequest represents a request for document metadata
type PDFInspectRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory,omitempty"`
	Query     string `json:"query,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// PDFSearchDirectoryResult represents the result of searching for PDF files
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}
