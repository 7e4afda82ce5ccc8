package models

type SubmitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type StatusResponse struct {
	State      string  `json:"state"`
	StatusText string  `json:"status_text"`
	Progress   float64 `json:"progress"`
}

type ListResponse struct {
	Resumes []ResumeRecord `json:"resumes"`
	Count   int            `json:"count"`
}
