package dto

type HealthResponse struct {
	Status                 string   `json:"status"`
	VectorstoreInitialized bool     `json:"vectorstore_initialized"`
	QAChainInitialized     bool     `json:"qa_chain_initialized"`
	InternalDocsLoaded     bool     `json:"internal_docs_loaded"`
	ProcessedFiles         []string `json:"processed_files"`
}

type SeedStatusResponse struct {
	TotalFiles    int      `json:"total_files"`
	PDFFilesFound []string `json:"pdf_files_found"`
}

type InitializeResponse struct {
	Documents []string `json:"documents"`
	Filename  string   `json:"filename"`
}

type ReloadResponse struct {
	DocumentsLoaded []string        `json:"documents_loaded"`
	TotalDocuments  int             `json:"total_documents"`
	Failures        []ReloadFailure `json:"failures,omitempty"`
}

type ReloadFailure struct {
	Filename string `json:"filename"`
	Detail   string `json:"detail"`
}

type UploadResponse struct {
	Filename       string   `json:"filename"`
	AllDocuments   []string `json:"all_documents"`
	TotalDocuments int      `json:"total_documents"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
