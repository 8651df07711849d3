package models

// ProcessRequest carries the image source and processing parameters. It is
// bound from JSON bodies, multipart forms and query strings alike; an
// uploaded file in the "image" field takes precedence over URL, BlobURL and
// Path.
type ProcessRequest struct {
	URL     string `json:"url,omitempty" form:"url"`
	BlobURL string `json:"blob_url,omitempty" form:"blob_url"`
	Path    string `json:"path,omitempty" form:"path"`

	Method        string   `json:"method,omitempty" form:"method"`
	Threshold     *int     `json:"threshold,omitempty" form:"threshold"`
	Percent       *float64 `json:"percent,omitempty" form:"percent"`
	MaxIterations int      `json:"max_iterations,omitempty" form:"max_iterations"`
	Stretch       bool     `json:"stretch,omitempty" form:"stretch"`
	Rounding      string   `json:"rounding,omitempty" form:"rounding"`

	// Methods selects the methods a comparison runs; empty means all.
	Methods []string `json:"methods,omitempty" form:"methods"`

	ExpectedText string `json:"expected_text,omitempty" form:"expected_text"`
	Language     string `json:"language,omitempty" form:"language"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// MethodDescription documents one threshold method.
type MethodDescription struct {
	Method     string   `json:"method"`
	Direction  string   `json:"direction"`
	Rounding   string   `json:"rounding"`
	Parameters []string `json:"parameters,omitempty"`
}

// MethodsResponse lists the available threshold methods.
type MethodsResponse struct {
	Methods []MethodDescription `json:"methods"`
}

// StatsResponse reports processing counters.
type StatsResponse struct {
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	AvgProcessingMs    float64          `json:"avg_processing_ms"`
	ByOperation        map[string]int64 `json:"by_operation"`
	ByMethod           map[string]int64 `json:"by_method"`
	ImagesFetched      int64            `json:"images_fetched"`
	ImageFetchFailures int64            `json:"image_fetch_failures"`
	Workers            WorkerStats      `json:"workers"`
}

// WorkerStats mirrors the comparison worker pool counters.
type WorkerStats struct {
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	ActiveWorkers int64 `json:"active_workers"`
}
