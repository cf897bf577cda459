package models

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	BrandKeywords  map[string][]string `json:"brand_keywords"`
	PrimaryBrand   string              `json:"primary_brand,omitempty"`
	SearchKeywords []string            `json:"search_keywords"`
	Competitors    []string            `json:"competitors"`
	NumResults     int                 `json:"num_results,omitempty"`
}

// UserSearchRequest is the body of POST /api/user-search.
type UserSearchRequest struct {
	Keywords     []string `json:"keywords"`
	NumResults   int      `json:"num_results"`
	AnalysisType string   `json:"analysis_type"`
}

// UserSearchResponse wraps a user search outcome.
type UserSearchResponse struct {
	Success   bool            `json:"success"`
	Data      *AnalysisResult `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// GenerateReportRequest is the body of POST /api/generate-report.
type GenerateReportRequest struct {
	AnalysisData *AnalysisResult `json:"analysis_data"`
	Format       string          `json:"format"`
}

// GenerateReportResponse carries a rendered report back to the client.
type GenerateReportResponse struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Status            string `json:"status"`
	AnalysisAvailable bool   `json:"analysis_available"`
	LastUpdate        string `json:"last_update,omitempty"`
	Version           string `json:"version"`
	Timestamp         string `json:"timestamp"`
}

// ConfigResponse exposes the default brand and keyword setup.
type ConfigResponse struct {
	PrimaryBrand      string              `json:"primary_brand"`
	DefaultBrands     map[string][]string `json:"default_brands"`
	DefaultKeywords   []string            `json:"default_keywords"`
	DefaultNumResults int                 `json:"default_num_results"`
	AnalysisTypes     []string            `json:"analysis_types"`
	ReportFormats     []string            `json:"report_formats"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	HasAnalysis bool   `json:"has_analysis"`
	Timestamp   string `json:"timestamp"`
}

// CompetitorsResponse is returned by GET /api/competitors.
type CompetitorsResponse struct {
	PrimaryBrand string            `json:"primary_brand"`
	PrimarySoV   float64           `json:"primary_sov"`
	Competitors  []CompetitorShare `json:"competitors"`
}
