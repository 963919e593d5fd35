package request

type SubmitScrapeRequest struct {
	Countries []string `json:"countries"`
	Force     bool     `json:"force"`
}
